package testing

import (
	"github.com/kquant/dashboard/internal/domain"
)

// NewUserFixture returns a verified user with KIS credentials on file
func NewUserFixture() *domain.User {
	return &domain.User{
		ID:                1,
		Email:             "trader@example.com",
		FullName:          "홍길동",
		Role:              domain.RoleUser,
		IsActive:          true,
		IsVerified:        true,
		HasKISCredentials: true,
		CreatedAt:         "2024-01-02T09:00:00",
	}
}

// NewAuthResponseFixture returns a login response for NewUserFixture.
// The token is opaque, so its expiry falls back to the session TTL.
func NewAuthResponseFixture() *domain.AuthResponse {
	return &domain.AuthResponse{
		AccessToken:  "token-123",
		RefreshToken: "refresh-123",
		TokenType:    "bearer",
		User:         NewUserFixture(),
	}
}

// NewStockFixtures returns a small mixed KOSPI/KOSDAQ universe
func NewStockFixtures() []domain.Stock {
	return []domain.Stock{
		{
			ID:         1,
			Symbol:     "005930",
			Name:       "삼성전자",
			MarketType: domain.MarketKOSPI,
			Sector:     "전기전자",
			Industry:   "반도체",
			MarketCap:  floatPtr(4.3e14),
		},
		{
			ID:         2,
			Symbol:     "000660",
			Name:       "SK하이닉스",
			MarketType: domain.MarketKOSPI,
			Sector:     "전기전자",
			Industry:   "반도체",
			MarketCap:  floatPtr(1.2e14),
		},
		{
			ID:         3,
			Symbol:     "035720",
			Name:       "카카오",
			MarketType: domain.MarketKOSPI,
			Sector:     "서비스업",
			Industry:   "인터넷",
		},
		{
			ID:         4,
			Symbol:     "247540",
			Name:       "에코프로비엠",
			MarketType: domain.MarketKOSDAQ,
			Sector:     "화학",
			Industry:   "2차전지",
		},
	}
}

// NewTradeFixtures returns trades in every status. Two are completed:
// one winner and one loser.
func NewTradeFixtures() []domain.Trade {
	return []domain.Trade{
		{
			ID:                1,
			StrategyName:      "골든크로스",
			Symbol:            "005930",
			Side:              "BUY",
			Quantity:          10,
			OrderPrice:        71000,
			ExecutedPrice:     floatPtr(71100),
			Status:            domain.TradeCompleted,
			OrderTime:         "2024-03-04T09:01:00",
			ExecutedTime:      "2024-03-04T09:01:02",
			ProfitLoss:        floatPtr(25000),
			ProfitLossPercent: floatPtr(3.5),
			Commission:        107,
		},
		{
			ID:                2,
			StrategyName:      "골든크로스",
			Symbol:            "000660",
			Side:              "SELL",
			Quantity:          5,
			OrderPrice:        152000,
			ExecutedPrice:     floatPtr(151500),
			Status:            domain.TradeCompleted,
			OrderTime:         "2024-03-05T10:15:00",
			ExecutedTime:      "2024-03-05T10:15:03",
			ProfitLoss:        floatPtr(-15000),
			ProfitLossPercent: floatPtr(-1.9),
			Commission:        114,
		},
		{
			ID:           3,
			StrategyName: "RSI 역추세",
			Symbol:       "035720",
			Side:         "BUY",
			Quantity:     20,
			OrderPrice:   48000,
			Status:       domain.TradePending,
			OrderTime:    "2024-03-06T13:30:00",
		},
		{
			ID:           4,
			StrategyName: "RSI 역추세",
			Symbol:       "247540",
			Side:         "BUY",
			Quantity:     3,
			OrderPrice:   250000,
			Status:       domain.TradeCancelled,
			OrderTime:    "2024-03-06T14:00:00",
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

package domain

// KISBalanceHolding is one row of output1, as strings straight from the broker
type KISBalanceHolding struct {
	ProductName    string `json:"prdt_name"`
	ProductNo      string `json:"pdno"`
	HoldingQty     string `json:"hldg_qty"`
	PurchaseAvg    string `json:"pchs_avg_pric"`
	CurrentPrice   string `json:"prpr"`
	EvalAmount     string `json:"evlu_amt"`
	EvalProfitLoss string `json:"evlu_pfls_amt"`
	EvalProfitRate string `json:"evlu_pfls_rt"`
}

// KISBalanceSummary is one row of output2
type KISBalanceSummary struct {
	TotalEvalAmount     string `json:"tot_evlu_amt"`
	Deposit             string `json:"dnca_tot_amt"`
	Withdrawable        string `json:"prvs_rcdl_excc_amt"`
	StockEvalAmount     string `json:"evlu_amt_smtl_amt"`
	EvalProfitLossTotal string `json:"evlu_pfls_smtl_amt"`
	PurchaseAmountTotal string `json:"pchs_amt_smtl_amt"`
}

// KISBalance is the raw balance payload
type KISBalance struct {
	Output1 []KISBalanceHolding `json:"output1"`
	Output2 []KISBalanceSummary `json:"output2"`
}

// KISCredentials as reported by the backend. Secrets are never returned.
type KISCredentials struct {
	HasCredentials   bool   `json:"has_credentials"`
	KISAccountNumber string `json:"kis_account_number,omitempty"`
	KISTradingMode   string `json:"kis_trading_mode,omitempty"`
}

// KISCredentialsForm is the settings form. AccountNumber is "NNNNNNNN-NN".
type KISCredentialsForm struct {
	AppKey        string `json:"app_key" validate:"required"`
	AppSecret     string `json:"app_secret" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required,kis_account"`
	TradingMode   string `json:"trading_mode" validate:"required,oneof=mock real"`
}

// ValidationMessages implements MessageProvider
func (KISCredentialsForm) ValidationMessages() map[string]string {
	return map[string]string{
		"app_key":        "App Key를 입력해주세요",
		"app_secret":     "App Secret을 입력해주세요",
		"account_number": "계좌번호 형식: 12345678-01",
		"trading_mode":   "거래 모드를 선택해주세요",
	}
}

// KISCredentialsUpdate is the wire body; the account number is split in two
type KISCredentialsUpdate struct {
	KISAppKey        string `json:"kis_app_key"`
	KISAppSecret     string `json:"kis_app_secret"`
	KISAccountNumber string `json:"kis_account_number"`
	KISAccountCode   string `json:"kis_account_code"`
	KISTradingMode   string `json:"kis_trading_mode"`
}

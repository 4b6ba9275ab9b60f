package domain

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// StrategyParams is the typed parameter record of one strategy type.
// Each variant converts back to the loose wire map with Map.
type StrategyParams interface {
	StrategyType() StrategyType
	Map() map[string]interface{}
}

// RiskParams are shared by every strategy type
type RiskParams struct {
	MaxPositionSize   float64 `mapstructure:"max_position_size" validate:"gte=0,lte=100"`
	MaxPositions      int     `mapstructure:"max_positions" validate:"gte=0,lte=100"`
	StopLossPercent   float64 `mapstructure:"stop_loss_percent" validate:"gte=0,lte=100"`
	TakeProfitPercent float64 `mapstructure:"take_profit_percent" validate:"gte=0,lte=1000"`
}

// newParamMap seeds a wire map with keys the typed record does not know,
// so an edit round trip keeps them. Typed fields are written over it.
func newParamMap(extra map[string]interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(extra)+8)
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func (r RiskParams) putInto(m map[string]interface{}) {
	if r.MaxPositionSize != 0 {
		m["max_position_size"] = r.MaxPositionSize
	}
	if r.MaxPositions != 0 {
		m["max_positions"] = r.MaxPositions
	}
	if r.StopLossPercent != 0 {
		m["stop_loss_percent"] = r.StopLossPercent
	}
	if r.TakeProfitPercent != 0 {
		m["take_profit_percent"] = r.TakeProfitPercent
	}
}

// MomentumParams drive a moving-average crossover
type MomentumParams struct {
	FastPeriod int    `mapstructure:"fast_period" validate:"gt=0"`
	SlowPeriod int    `mapstructure:"slow_period" validate:"gtfield=FastPeriod"`
	MAType     string `mapstructure:"ma_type" validate:"oneof=SMA EMA"`
	RiskParams `mapstructure:",squash"`
	Extra      map[string]interface{} `mapstructure:",remain"`
}

func (MomentumParams) StrategyType() StrategyType { return StrategyMomentum }

func (p MomentumParams) Map() map[string]interface{} {
	m := newParamMap(p.Extra)
	m["fast_period"] = p.FastPeriod
	m["slow_period"] = p.SlowPeriod
	m["ma_type"] = p.MAType
	p.RiskParams.putInto(m)
	return m
}

// ValidationMessages implements MessageProvider
func (MomentumParams) ValidationMessages() map[string]string {
	return map[string]string{
		"fast_period": "단기 이동평균 기간을 입력해주세요",
		"slow_period": "장기 기간은 단기 기간보다 커야 합니다",
		"ma_type":     "이동평균 유형은 SMA 또는 EMA 입니다",
	}
}

// MeanReversionParams trade RSI extremes
type MeanReversionParams struct {
	RSIPeriod  int     `mapstructure:"rsi_period" validate:"gt=1"`
	Oversold   float64 `mapstructure:"oversold" validate:"gte=0,ltfield=Overbought"`
	Overbought float64 `mapstructure:"overbought" validate:"lte=100"`
	RiskParams `mapstructure:",squash"`
	Extra      map[string]interface{} `mapstructure:",remain"`
}

func (MeanReversionParams) StrategyType() StrategyType { return StrategyMeanReversion }

func (p MeanReversionParams) Map() map[string]interface{} {
	m := newParamMap(p.Extra)
	m["rsi_period"] = p.RSIPeriod
	m["oversold"] = p.Oversold
	m["overbought"] = p.Overbought
	p.RiskParams.putInto(m)
	return m
}

// ValidationMessages implements MessageProvider
func (MeanReversionParams) ValidationMessages() map[string]string {
	return map[string]string{
		"oversold": "과매도 기준은 과매수 기준보다 작아야 합니다",
	}
}

// BreakoutParams are volatility breakout settings
type BreakoutParams struct {
	K          float64 `mapstructure:"k" validate:"gt=0,lte=1"`
	StopLoss   float64 `mapstructure:"stop_loss" validate:"gte=0,lte=100"`
	RiskParams `mapstructure:",squash"`
	Extra      map[string]interface{} `mapstructure:",remain"`
}

func (BreakoutParams) StrategyType() StrategyType { return StrategyBreakout }

func (p BreakoutParams) Map() map[string]interface{} {
	m := newParamMap(p.Extra)
	m["k"] = p.K
	m["stop_loss"] = p.StopLoss
	p.RiskParams.putInto(m)
	return m
}

// CustomParams carries an opaque map. It is also the fallback when a
// stored strategy's parameters no longer decode into their declared type.
type CustomParams struct {
	Type   StrategyType
	Values map[string]interface{}
}

func (p CustomParams) StrategyType() StrategyType {
	if p.Type == "" {
		return StrategyCustom
	}
	return p.Type
}

func (p CustomParams) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(p.Values))
	for k, v := range p.Values {
		m[k] = v
	}
	return m
}

// paramDefaults fill keys the browser may omit
var paramDefaults = map[StrategyType]map[string]interface{}{
	StrategyMomentum:      {"ma_type": "SMA"},
	StrategyMeanReversion: {"rsi_period": 14, "oversold": 30, "overbought": 70},
	StrategyBreakout:      {"k": 0.5},
}

func normalizeParams(t StrategyType, raw map[string]interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(raw))
	for k, v := range paramDefaults[t] {
		m[k] = v
	}
	for k, v := range raw {
		m[k] = v
	}

	if t == StrategyMomentum {
		if _, ok := raw["fast_period"]; !ok {
			if v, ok := raw["short_window"]; ok {
				m["fast_period"] = v
			}
		}
		if _, ok := raw["slow_period"]; !ok {
			if v, ok := raw["long_window"]; ok {
				m["slow_period"] = v
			}
		}
		delete(m, "short_window")
		delete(m, "long_window")
		if s, ok := m["ma_type"].(string); ok {
			m["ma_type"] = strings.ToUpper(s)
		}
	}
	return m
}

func decodeInto(raw map[string]interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

func newParams(t StrategyType) (StrategyParams, interface{}, error) {
	switch t {
	case StrategyMomentum:
		p := &MomentumParams{}
		return p, p, nil
	case StrategyMeanReversion:
		p := &MeanReversionParams{}
		return p, p, nil
	case StrategyBreakout:
		p := &BreakoutParams{}
		return p, p, nil
	case StrategyCustom:
		return nil, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown strategy type %q", t)
}

func deref(p StrategyParams) StrategyParams {
	switch v := p.(type) {
	case *MomentumParams:
		return *v
	case *MeanReversionParams:
		return *v
	case *BreakoutParams:
		return *v
	}
	return p
}

// DecodeParams converts a loose wire map into the typed variant for t and
// validates it. Failures are *ValidationError keyed by parameter name.
func DecodeParams(t StrategyType, raw map[string]interface{}) (StrategyParams, error) {
	params, target, err := newParams(t)
	if err != nil {
		return nil, err
	}
	if params == nil {
		return CustomParams{Values: raw}, nil
	}

	if err := decodeInto(normalizeParams(t, raw), target); err != nil {
		return nil, &ValidationError{Fields: map[string]string{"parameters": err.Error()}}
	}
	if err := Validate(target); err != nil {
		return nil, err
	}
	return deref(params), nil
}

// ParseParams is the lenient read-side decode used for backend payloads.
// It never validates; undecodable maps come back as CustomParams tagged with t.
func ParseParams(t StrategyType, raw map[string]interface{}) StrategyParams {
	params, target, err := newParams(t)
	if err != nil || params == nil {
		return CustomParams{Type: t, Values: raw}
	}
	if err := decodeInto(normalizeParams(t, raw), target); err != nil {
		return CustomParams{Type: t, Values: raw}
	}
	return deref(params)
}

// ValidateStrategyForm checks the form and its parameters together and
// returns the typed parameters ready to be sent.
func ValidateStrategyForm(form StrategyForm) (StrategyParams, error) {
	combined := &ValidationError{Fields: map[string]string{}}

	if err := Validate(form); err != nil {
		if other := mergeValidation(combined, "", err); other != nil {
			return nil, other
		}
	}

	var params StrategyParams
	if form.Type != "" {
		p, err := DecodeParams(form.Type, form.Parameters)
		if err != nil {
			if other := mergeValidation(combined, "parameters.", err); other != nil {
				combined.Fields["strategy_type"] = other.Error()
			}
		}
		params = p
	}

	if len(combined.Fields) > 0 {
		return nil, combined
	}
	return params, nil
}

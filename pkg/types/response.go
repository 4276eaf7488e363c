package types

// ErrorBody is the JSON shape of every non-2xx API response.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// RateView is one FX pair as served by the rates endpoint.
type RateView struct {
	Pair string `json:"pair"`
	From string `json:"from"`
	To   string `json:"to"`
	Rate string `json:"rate"`
}

type RatesResponse struct {
	ReportingCurrency string     `json:"reportingCurrency"`
	LoadedAt          string     `json:"loadedAt,omitempty"`
	Rates             []RateView `json:"rates"`
}

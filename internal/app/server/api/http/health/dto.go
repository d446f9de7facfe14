package health

type checkInput struct{}

type checkOutput struct {
	Body checkResponse
}

type checkResponse struct {
	Status  string `json:"status" example:"OK" doc:"Readiness of the report intake service"`
	Service string `json:"service" example:"citizenconnect" doc:"Service identifier"`
}

package main

type messageRequest struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

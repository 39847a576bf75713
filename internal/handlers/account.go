// Package handlers adapts the registrar and the pipeline to Lambda-shaped
// events and responses.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/radamanthiss/transaction-api/internal/registrar"
)

// Registration response bodies. These are part of the public contract and
// must not drift.
const (
	bodyInvalidRequest = "Invalid request body"
	bodyMissingFields  = "Missing account ID or email"
	bodyAccountExists  = "Account already exists"
	bodyLookupError    = "Error accessing DynamoDB"
	bodyCreateError    = "Error saving account to DynamoDB"
	bodyAccountCreated = "Account created successfully"
)

// RegistrarService is the registration operation the handler depends on.
type RegistrarService interface {
	Register(ctx context.Context, id, email string) error
}

// AccountHandler serves the account-registration endpoint.
type AccountHandler struct {
	registrar RegistrarService
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(r RegistrarService) *AccountHandler {
	return &AccountHandler{registrar: r}
}

// registrationRequest is the expected request body.
type registrationRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Handle maps a registration request to the registrar and its outcome to a
// status code and body.
func (h *AccountHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var body registrationRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		log.Printf("ERROR: invalid registration body: %v", err)
		return response(http.StatusBadRequest, bodyInvalidRequest), nil
	}

	err := h.registrar.Register(ctx, body.ID, body.Email)
	switch {
	case err == nil:
		return response(http.StatusCreated, bodyAccountCreated), nil
	case errors.Is(err, registrar.ErrMissingFields):
		return response(http.StatusBadRequest, bodyMissingFields), nil
	case errors.Is(err, registrar.ErrAccountExists):
		return response(http.StatusConflict, bodyAccountExists), nil
	}

	log.Printf("ERROR: registering account %s: %v", body.ID, err)
	var storeErr *registrar.StoreError
	if errors.As(err, &storeErr) && storeErr.Op == registrar.OpCreate {
		return response(http.StatusInternalServerError, bodyCreateError), nil
	}
	return response(http.StatusInternalServerError, bodyLookupError), nil
}

func response(code int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: code, Body: body}
}

package server

import (
	"github.com/toozej/go-ehparse/internal/services/classify"
	"github.com/toozej/go-ehparse/internal/types"
)

// PageParser turns a raw page body into its typed record
type PageParser interface {
	ParseBytes(kind string, body []byte, contentType string) (any, error)
}

// MessageClassifier maps a server message onto a known outcome
type MessageClassifier interface {
	Classify(kind, message string) (classify.Result, error)
}

type APIResponse = types.APIResponse

// ClassifyRequest is the JSON body accepted by the classify endpoint
type ClassifyRequest struct {
	Message string `json:"message"`
}

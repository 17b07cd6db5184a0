// AngelaMos | 2026
// errtext.go

// Package errtext maps opaque backend error text onto a closed set of
// user-facing messages. Pattern order is significant: more specific patterns
// are checked before generic ones, and changing the order changes which
// message wins for compound errors.
package errtext

import (
	"errors"
	"strings"

	"github.com/caffeinepub/engineer-notes-shop/internal/actor"
)

const (
	MsgUnknown = "An unknown error occurred. Please try again."

	MsgSignInRequired = "You must be signed in to perform this action. " +
		"Please sign in and try again."
	MsgAdminNotInitialized = "The admin system needs to be initialized. " +
		"Please contact the store owner or try initializing the system."
	MsgNotAuthorized = "You do not have permission to perform this action. " +
		"Only store owners and administrators can manage products."

	MsgCategoryNotFound = "The selected category does not exist. " +
		"Please choose a valid category from the list."
	MsgProductNotFound = "The product could not be found. " +
		"It may have been deleted."

	MsgFileUploadFailed = "File upload failed. " +
		"Please ensure the file is a valid PDF and try again."
	MsgNoFileSelected = "No file was selected. " +
		"Please choose a PDF file to upload."
	MsgPDFOnly = "Only PDF files are allowed. Please select a PDF file."

	MsgNetwork = "Network error. " +
		"Please check your connection and try again."

	MsgAlreadyInitialized = "The store has already been initialized. " +
		"No further action is needed."

	MsgPurchaseSignIn = "You must be signed in to purchase products. " +
		"Please sign in and try again."
	MsgNotPublished = "This product is not available for purchase " +
		"at this time."
	MsgDownloadRequiresPurchase = "You must purchase this product before " +
		"downloading. Please complete your purchase and try again."
	MsgProfileSignIn = "You must be signed in to manage your profile. " +
		"Please sign in and try again."

	MsgBackendUnavailable = "Unable to connect to the backend. " +
		"Please refresh the page and try again."
)

// Translate returns a user-facing message for any error, nil included. When
// no pattern matches, the original text passes through unchanged.
func Translate(err error) string {
	if err == nil {
		return MsgUnknown
	}

	message := err.Error()
	if message == "" {
		return translateCode(err)
	}

	return TranslateMessage(message)
}

// TranslateMessage matches raw backend text by ordered substring checks.
func TranslateMessage(message string) string {
	if strings.TrimSpace(message) == "" {
		return MsgUnknown
	}

	lower := strings.ToLower(message)

	if strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "only store owners") {
		if strings.Contains(lower, "anonymous") {
			return MsgSignInRequired
		}
		if strings.Contains(lower, "admin system not initialized") {
			return MsgAdminNotInitialized
		}
		if strings.Contains(lower, "purchase") {
			return MsgPurchaseSignIn
		}
		if strings.Contains(lower, "download") {
			return MsgDownloadRequiresPurchase
		}
		if strings.Contains(lower, "profile") {
			return MsgProfileSignIn
		}
		return MsgNotAuthorized
	}

	if strings.Contains(lower, "category not found") {
		return MsgCategoryNotFound
	}

	if strings.Contains(lower, "product not found") {
		return MsgProductNotFound
	}

	if strings.Contains(lower, "file") &&
		(strings.Contains(lower, "upload") ||
			strings.Contains(lower, "not available")) {
		return MsgFileUploadFailed
	}

	if strings.Contains(lower, "no file selected") ||
		strings.Contains(lower, "please select a file") {
		return MsgNoFileSelected
	}

	if strings.Contains(lower, "only pdf files") {
		return MsgPDFOnly
	}

	if strings.Contains(lower, "network") ||
		strings.Contains(lower, "fetch") ||
		strings.Contains(lower, "connection") {
		return MsgNetwork
	}

	if strings.Contains(lower, "store already initialized") {
		return MsgAlreadyInitialized
	}

	if strings.Contains(lower, "product is not published") {
		return MsgNotPublished
	}

	if strings.Contains(lower, "actor not available") ||
		strings.Contains(lower, "backend not available") {
		return MsgBackendUnavailable
	}

	return message
}

// translateCode falls back to the structured code carried by newer backend
// builds when the message itself is empty.
func translateCode(err error) string {
	var actorErr *actor.Error
	if !errors.As(err, &actorErr) {
		return MsgUnknown
	}

	switch actorErr.Code {
	case actor.CodeUnauthorized:
		return MsgNotAuthorized
	case actor.CodeNotFound:
		return MsgProductNotFound
	case actor.CodeUnavailable:
		return MsgNetwork
	default:
		return MsgUnknown
	}
}

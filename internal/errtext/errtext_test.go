// AngelaMos | 2026
// errtext_test.go

package errtext

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/engineer-notes-shop/internal/actor"
)

func TestTranslateIsTotal(t *testing.T) {
	assert.Equal(t, MsgUnknown, Translate(nil))
	assert.Equal(t, MsgUnknown, TranslateMessage(""))
	assert.Equal(t, MsgUnknown, TranslateMessage("   "))

	// Unrecognized text passes through verbatim.
	original := "something nobody anticipated happened"
	assert.Equal(t, original, TranslateMessage(original))
}

func TestTranslateMessageBranches(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    string
	}{
		{
			"anonymous unauthorized",
			"Unauthorized: anonymous callers cannot manage the store",
			MsgSignInRequired,
		},
		{
			"admin system not initialized",
			"Unauthorized: admin system not initialized",
			MsgAdminNotInitialized,
		},
		{
			"purchase requires sign-in",
			"Unauthorized: purchase requires a signed-in user",
			MsgPurchaseSignIn,
		},
		{
			"download requires purchase",
			"Unauthorized: download requires purchase",
			MsgDownloadRequiresPurchase,
		},
		{
			"profile requires sign-in",
			"Unauthorized: profile access requires a signed-in user",
			MsgProfileSignIn,
		},
		{
			"generic authorization failure",
			"Unauthorized: only store owners and administrators" +
				" can manage products",
			MsgNotAuthorized,
		},
		{
			"category missing",
			"Category not found",
			MsgCategoryNotFound,
		},
		{
			"product missing",
			"Product not found",
			MsgProductNotFound,
		},
		{
			"upload failure",
			"file upload rejected by backend",
			MsgFileUploadFailed,
		},
		{
			"file missing",
			"file not available",
			MsgFileUploadFailed,
		},
		{
			"no file selected",
			"No file selected",
			MsgNoFileSelected,
		},
		{
			"pdf only",
			"Only PDF files are allowed",
			MsgPDFOnly,
		},
		{
			"network failure",
			"network request failed",
			MsgNetwork,
		},
		{
			"fetch failure",
			"Failed to fetch",
			MsgNetwork,
		},
		{
			"double initialize",
			"Store already initialized",
			MsgAlreadyInitialized,
		},
		{
			"unpublished purchase",
			"Product is not published",
			MsgNotPublished,
		},
		{
			"backend gone",
			"actor not available",
			MsgBackendUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TranslateMessage(tc.message))
		})
	}
}

// Pattern order is part of the contract: a compound message matching both the
// anonymous and the generic unauthorized pattern must resolve to the more
// specific sign-in message.
func TestTranslateOrderingWins(t *testing.T) {
	compound := "Unauthorized: anonymous callers cannot manage products," +
		" only store owners and administrators can manage products"
	assert.Equal(t, MsgSignInRequired, TranslateMessage(compound))
}

func TestTranslateFallsBackToStructuredCode(t *testing.T) {
	err := &actor.Error{Code: actor.CodeUnavailable, Message: ""}
	assert.Equal(t, MsgNetwork, Translate(err))

	wrapped := errors.New("")
	assert.Equal(t, MsgUnknown, Translate(wrapped))
}

func TestHTTPErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{
			actor.NewError(
				actor.CodeUnauthorized,
				"Unauthorized: anonymous callers cannot manage the store",
			),
			http.StatusUnauthorized,
		},
		{
			actor.NewError(
				actor.CodeUnauthorized,
				"Unauthorized: only store owners and administrators"+
					" can manage products",
			),
			http.StatusForbidden,
		},
		{
			actor.NewError(actor.CodeNotFound, "Product not found"),
			http.StatusNotFound,
		},
		{
			actor.NewError(actor.CodeConflict, "Store already initialized"),
			http.StatusConflict,
		},
		{
			actor.NewError(actor.CodeInvalid, "Product is not published"),
			http.StatusBadRequest,
		},
		{
			actor.NewError(actor.CodeUnavailable, "actor not available"),
			http.StatusServiceUnavailable,
		},
		{
			errors.New("mystery"),
			http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		appErr := HTTPError(tc.err)
		require.NotNil(t, appErr)
		assert.Equal(t, tc.status, appErr.Status, "err=%v", tc.err)
	}
}

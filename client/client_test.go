package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/OswaldHeaney/reviewnet/client"
	"github.com/OswaldHeaney/reviewnet/server"
	"github.com/OswaldHeaney/reviewnet/testutil"
)

func newNode(t *testing.T) (*testutil.Fixture, string) {
	t.Helper()

	fixture := testutil.NewFixture(t)
	handler := server.NewHandler(fixture.Ledger, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return fixture, srv.URL
}

func newClient(t *testing.T, fixture *testutil.Fixture, baseURL string, key testutil.KeyPair) *client.Client {
	t.Helper()
	c, err := client.New(client.Config{
		BaseURL:    baseURL,
		PrivateKey: key.PrivateKey,
		Encoder:    fixture.Cipher,
	})
	require.NoError(t, err)
	return c
}

func TestClientSubmitAndReview(t *testing.T) {
	fixture, baseURL := newNode(t)
	author := testutil.GenerateKeyPair(t)
	reviewer := testutil.GenerateKeyPair(t)
	ctx := context.Background()

	authorClient := newClient(t, fixture, baseURL, author)
	reviewerClient := newClient(t, fixture, baseURL, reviewer)

	paperID, err := authorClient.SubmitPaper(ctx, "Dense Ledgers", "On dense id assignment.", "systems")
	require.NoError(t, err)
	require.Equal(t, uint64(1), paperID)

	reviewable, err := reviewerClient.ListReviewable(ctx)
	require.NoError(t, err)
	require.Len(t, reviewable, 1)

	reviewID, err := reviewerClient.SubmitReview(ctx, paperID, 1, 3, "solid work")
	require.NoError(t, err)
	require.Equal(t, uint64(1), reviewID)

	reviews, err := reviewerClient.ListReviews(ctx, paperID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, "solid work", reviews[0].Comment)

	counts, err := authorClient.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), counts.TotalPapers)
	require.Equal(t, uint64(1), counts.TotalReviews)
}

func TestClientStatusError(t *testing.T) {
	fixture, baseURL := newNode(t)
	author := testutil.GenerateKeyPair(t)
	ctx := context.Background()

	authorClient := newClient(t, fixture, baseURL, author)

	paperID, err := authorClient.SubmitPaper(ctx, "Dense Ledgers", "On dense id assignment.", "systems")
	require.NoError(t, err)

	// Self-review is a conflict; the client surfaces the node's status.
	_, err = authorClient.SubmitReview(ctx, paperID, 1, 3, "")
	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusConflict, statusErr.Code)
}

func TestClientOwnPapersAndToggle(t *testing.T) {
	fixture, baseURL := newNode(t)
	author := testutil.GenerateKeyPair(t)
	ctx := context.Background()

	authorClient := newClient(t, fixture, baseURL, author)
	superClient := newClient(t, fixture, baseURL, fixture.Superuser)

	paperID, err := authorClient.SubmitPaper(ctx, "Dense Ledgers", "On dense id assignment.", "systems")
	require.NoError(t, err)

	require.NoError(t, authorClient.ToggleActive(ctx, paperID))
	own, err := authorClient.ListOwn(ctx)
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.False(t, own[0].Active)

	require.NoError(t, authorClient.ToggleActive(ctx, paperID))
	require.NoError(t, superClient.ForceDeactivate(ctx, paperID))
}

func TestClientEncryptedRetrieval(t *testing.T) {
	fixture, baseURL := newNode(t)
	author := testutil.GenerateKeyPair(t)
	reviewer := testutil.GenerateKeyPair(t)
	ctx := context.Background()

	authorClient := newClient(t, fixture, baseURL, author)
	reviewerClient := newClient(t, fixture, baseURL, reviewer)

	paperID, err := authorClient.SubmitPaper(ctx, "Dense Ledgers", "On dense id assignment.", "systems")
	require.NoError(t, err)
	reviewID, err := reviewerClient.SubmitReview(ctx, paperID, 1, 4, "")
	require.NoError(t, err)

	resp, err := authorClient.GetEncryptedReview(ctx, reviewID)
	require.NoError(t, err)
	require.Equal(t, paperID, resp.PaperID)
	require.NotEmpty(t, resp.Quality)

	_, err = reviewerClient.GetEncryptedReview(ctx, reviewID)
	var statusErr *client.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusForbidden, statusErr.Code)
}

func TestClientRequiresKeyForMutation(t *testing.T) {
	_, baseURL := newNode(t)

	c, err := client.New(client.Config{BaseURL: baseURL})
	require.NoError(t, err)

	_, err = c.SubmitPaper(context.Background(), "t", "a", "c")
	require.Error(t, err)
}

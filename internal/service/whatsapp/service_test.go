package whatsapp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	client "github.com/mamadbah2/dairyfarm/pkg/clients/whatsapp"
)

type recordingClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (c *recordingClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.sent = append(c.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

func TestPublishSendsFormattedSummary(t *testing.T) {
	rc := &recordingClient{}
	n := NewSummaryNotifier(rc, "254700000000", nil)
	summary := models.ProductionSummary{Date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), TotalProduction: 18, NetProduction: 16, TotalSold: 10, FinalBalance: 6}

	require.NoError(t, n.Publish(context.Background(), summary))
	require.Len(t, rc.sent, 1)
	require.Equal(t, "254700000000", rc.sent[0].To)
	require.True(t, strings.HasPrefix(rc.sent[0].Body, "Milk summary 2026-04-01"))
	require.Contains(t, rc.sent[0].Body, "Balance carried forward: 6.0 L")
	require.Equal(t, "whatsapp", n.Name())
}

func TestPublishWrapsClientError(t *testing.T) {
	boom := errors.New("boom")
	n := NewSummaryNotifier(&recordingClient{err: boom}, "1", nil)
	err := n.Publish(context.Background(), models.ProductionSummary{Date: time.Now().UTC()})
	require.ErrorIs(t, err, boom)
}

func TestPublishRequiresRecipient(t *testing.T) {
	rc := &recordingClient{}
	require.Error(t, NewSummaryNotifier(rc, "", nil).Publish(context.Background(), models.ProductionSummary{}))
	require.Empty(t, rc.sent)
}

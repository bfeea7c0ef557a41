package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizmaker/internal/models"
)

type tokenTable map[string]*models.User

func (t tokenTable) Authenticate(_ context.Context, token string) (*models.User, error) {
	if user, ok := t[token]; ok {
		return user, nil
	}
	return nil, errors.New("unknown token")
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()

	users := tokenTable{
		"admin-token": {ID: "a1", Role: models.RoleAdmin},
		"user-token":  {ID: "u1", Role: models.RoleUser},
	}
	hub := NewHub(users, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHub_AdminReceivesCompletedAttempts(t *testing.T) {
	hub, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=admin-token", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.AttemptCompleted(models.AttemptEvent{AttemptID: 9, QuizTitle: "Go", Score: 3, MaxScore: 4})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string              `json:"type"`
		Data models.AttemptEvent `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, TypeAttemptCompleted, msg.Type)
	assert.Equal(t, uint(9), msg.Data.AttemptID)
	assert.Equal(t, "Go", msg.Data.QuizTitle)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsNonAdmins(t *testing.T) {
	_, url := startHub(t)

	_, resp, err := websocket.DefaultDialer.Dial(url+"?token=user-token", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

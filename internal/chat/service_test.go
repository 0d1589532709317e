package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/user"
)

type fakeSession struct{ id string }

func (s fakeSession) Current() (string, bool) { return s.id, s.id != "" }

type echoBackend struct {
	calls int
	err   error
}

func (b *echoBackend) Chat(ctx context.Context, userID, message string) (*remote.ChatReply, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return &remote.ChatReply{Response: userID + ": " + message}, nil
}

type countResponder struct{ n int }

func (r *countResponder) Responded(context.Context) { r.n++ }

func TestSend(t *testing.T) {
	b := &echoBackend{}
	r := &countResponder{}
	svc := NewService(b, fakeSession{id: "alice"}, r, nil)

	reply, err := svc.Send(context.Background(), "  I feel tired ")
	require.NoError(t, err)
	assert.Equal(t, "alice: I feel tired", reply)
	assert.Equal(t, 1, r.n)
}

func TestSendGuards(t *testing.T) {
	b := &echoBackend{}
	r := &countResponder{}
	ctx := context.Background()

	_, err := NewService(b, fakeSession{}, r, nil).Send(ctx, "hi")
	assert.ErrorIs(t, err, user.ErrSessionNotValid)

	svc := NewService(b, fakeSession{id: "alice"}, r, nil)
	_, err = svc.Send(ctx, "   ")
	assert.ErrorIs(t, err, remote.ErrValidation)
	assert.Equal(t, 0, b.calls)

	b.err = remote.ErrNetwork
	_, err = svc.Send(ctx, "hi")
	assert.ErrorIs(t, err, remote.ErrNetwork)
	assert.Equal(t, 0, r.n)
}

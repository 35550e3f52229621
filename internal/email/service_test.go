package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestSendCustom(t *testing.T) {
	d := &recordingDialer{}
	svc := NewService("clinic@example.com", d)

	require.NoError(t, svc.SendCustom(context.Background(), "asha@example.com", "Booked", "<p>See you</p>"))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"clinic@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"asha@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Booked"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
}

func TestSendCustomErrors(t *testing.T) {
	d := &recordingDialer{err: errors.New("connection refused")}
	svc := NewService("clinic@example.com", d)

	err := svc.SendCustom(context.Background(), "asha@example.com", "Booked", "x")
	assert.ErrorContains(t, err, "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.err = nil
	assert.ErrorIs(t, svc.SendCustom(ctx, "asha@example.com", "Booked", "x"), context.Canceled)
	assert.Empty(t, d.sent)
}

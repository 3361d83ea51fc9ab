package dispatch_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/marcelsud/webhook-recorder/dispatch/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newConnector(t *testing.T, platform, id string) *mocks.Connector {
	c := mocks.NewConnector(t)
	c.On("Platform").Return(platform).Maybe()
	c.On("SelfID").Return(id).Maybe()
	return c
}

func TestEligible(t *testing.T) {
	target := dispatch.Target{Platform: "onebot", ConnectorID: "b1"}

	tests := []struct {
		name     string
		platform string
		id       string
		want     bool
	}{
		{"success - platform and id match", "onebot", "b1", true},
		{"success - platform differs but id matches", "kook", "b1", true},
		{"success - id differs but platform matches", "onebot", "b2", true},
		{"error - platform and id differ", "kook", "b2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newConnector(t, tt.platform, tt.id)
			assert.Equal(t, tt.want, dispatch.Eligible(c, target))
		})
	}
}

func TestDispatcher_Forward(t *testing.T) {
	ctx := context.Background()
	body := map[string]string{"name": "Al", "msg": "{name}!"}
	target := dispatch.Target{
		Platform:    "onebot",
		ConnectorID: "b1",
		SessionIDs:  []string{"123", "private:42"},
		MsgTemplate: []string{"hello {name}", "you said {msg}"},
	}

	t.Run("success - delivers through the matching connector only", func(t *testing.T) {
		onebot := newConnector(t, "onebot", "b1")
		kook := newConnector(t, "kook", "b2")
		want := "hello Al\nyou said {name}!"
		onebot.On("Send", mock.Anything, "123", want).Return(nil).Once()
		onebot.On("Send", mock.Anything, "private:42", want).Return(nil).Once()

		d := dispatch.NewDispatcher(zerolog.Nop(), kook, onebot)
		outcome := d.Forward(ctx, []dispatch.Target{target}, body)

		assert.Equal(t, dispatch.Delivered, outcome)
		kook.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success - first eligible pair wins", func(t *testing.T) {
		first := newConnector(t, "onebot", "b1")
		second := newConnector(t, "onebot", "b1")
		first.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

		d := dispatch.NewDispatcher(zerolog.Nop(), first, second)
		outcome := d.Forward(ctx, []dispatch.Target{target}, body)

		assert.Equal(t, dispatch.Delivered, outcome)
		second.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success - send errors do not change the outcome", func(t *testing.T) {
		c := newConnector(t, "onebot", "b1")
		c.On("Send", mock.Anything, "123", mock.Anything).Return(errors.New("boom")).Once()
		c.On("Send", mock.Anything, "private:42", mock.Anything).Return(nil).Once()

		d := dispatch.NewDispatcher(zerolog.Nop(), c)

		assert.Equal(t, dispatch.Delivered, d.Forward(ctx, []dispatch.Target{target}, body))
	})

	t.Run("error - no matching connector", func(t *testing.T) {
		c := newConnector(t, "kook", "b2")
		d := dispatch.NewDispatcher(zerolog.Nop(), c)

		outcome := d.Forward(ctx, []dispatch.Target{target}, body)

		assert.Equal(t, dispatch.NoConnector, outcome)
		assert.Equal(t, http.StatusMethodNotAllowed, outcome.StatusCode())
	})

	t.Run("error - no connectors at all", func(t *testing.T) {
		d := dispatch.NewDispatcher(zerolog.Nop())
		assert.Equal(t, dispatch.NoConnector, d.Forward(ctx, []dispatch.Target{target}, body))
	})
}

func TestDispatcher_Available(t *testing.T) {
	d := dispatch.NewDispatcher(zerolog.Nop(), newConnector(t, "onebot", "b1"))
	d.Add(newConnector(t, "discord", "42"))

	assert.Equal(t, []string{"onebot,b1", "discord,42"}, d.Available())
	assert.Len(t, d.Connectors(), 2)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, http.StatusOK, dispatch.Delivered.StatusCode())
	assert.Equal(t, http.StatusOK, dispatch.Stored.StatusCode())
	assert.Equal(t, "no_connector", dispatch.NoConnector.String())
	assert.Equal(t, "unknown", dispatch.Outcome(0).String())
}

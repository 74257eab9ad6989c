package amqp10

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Address
		wantErr bool
	}{
		{
			name:  "plain",
			input: "amqp://broker.example.com/orders",
			want:  Address{Host: "broker.example.com", Port: 5672, Name: "orders"},
		},
		{
			name:  "tls with port",
			input: "amqps://broker:5799/events",
			want:  Address{Host: "broker", Port: 5799, TLS: true, Name: "events"},
		},
		{
			name:  "default host",
			input: "amqp:///queue",
			want:  Address{Host: "localhost", Port: 5672, Name: "queue"},
		},
		{
			name:  "escaped terminus",
			input: "amqp://broker/my%2Fqueue",
			want:  Address{Host: "broker", Port: 5672, Name: "my/queue"},
		},
		{
			name:  "tls default port",
			input: "amqps://broker/q",
			want:  Address{Host: "broker", Port: 5671, TLS: true, Name: "q"},
		},
		{name: "missing scheme", input: "broker/orders", wantErr: true},
		{name: "bad scheme", input: "http://broker/orders", wantErr: true},
		{name: "bad port", input: "amqp://broker:notaport/orders", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestResolveTerminus(t *testing.T) {
	assert.Equal(t, "orders", resolveTerminus("orders"))
	assert.Equal(t, "orders", resolveTerminus("amqp://broker/orders"))
	assert.Equal(t, "bad://///", resolveTerminus("bad://///"), "unparseable addresses pass through")
}

package service

import (
	"context"
	"testing"

	"filterchat/internal/config"
	"filterchat/internal/domain"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPInvoker_Text(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out, err := env.services.Invoker.Apply(ctx, env.server.filter("/upper", domain.ValueTypeText, domain.ValueTypeText), domain.NewTextValue("hello"))
	require.NoError(t, err)
	assert.Equal(t, domain.ValueTypeText, out.Type)
	assert.Equal(t, "HELLO", out.Text())
	assert.Empty(t, out.ID)
}

func TestHTTPInvoker_TextToImageDecodesBase64(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.services.Invoker.Apply(context.Background(),
		env.server.filter("/render", domain.ValueTypeText, domain.ValueTypeImage), domain.NewTextValue("cat"))
	require.NoError(t, err)
	assert.Equal(t, domain.ValueTypeImage, out.Type)
	assert.Equal(t, []byte("IMG:cat"), out.Content)
}

func TestHTTPInvoker_Binary(t *testing.T) {
	env := newTestEnv(t)
	in := domain.Value{Type: domain.ValueTypeImage, Content: []byte{1, 2, 3}}

	out, err := env.services.Invoker.Apply(context.Background(), env.server.filter("/reverse", domain.ValueTypeImage, domain.ValueTypeImage), in)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 2, 1}, out.Content)

	caption, err := env.services.Invoker.Apply(context.Background(), env.server.filter("/caption", domain.ValueTypeAudio, domain.ValueTypeText),
		domain.Value{Type: domain.ValueTypeAudio, Content: []byte("beep")})
	require.NoError(t, err)
	assert.Equal(t, "caption of beep", caption.Text())
}

func TestHTTPInvoker_InvalidUTF8TextOutputIsUpstreamError(t *testing.T) {
	env := newTestEnv(t)
	in := domain.Value{Type: domain.ValueTypeAudio, Content: []byte{0xff, 0xfe}}

	_, err := env.services.Invoker.Apply(context.Background(), env.server.filter("/caption", domain.ValueTypeAudio, domain.ValueTypeText), in)
	require.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.Contains(t, err.Error(), "UTF-8")

	out, err := env.services.Invoker.Apply(context.Background(), env.server.filter("/reverse", domain.ValueTypeAudio, domain.ValueTypeAudio), in)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfe, 0xff}, out.Content)
}

func TestHTTPInvoker_UpstreamFailures(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		path  string
		in    domain.ValueType
		value domain.Value
	}{
		{"text non-2xx", "/fail", domain.ValueTypeText, domain.NewTextValue("x")},
		{"missing value field", "/no-value", domain.ValueTypeText, domain.NewTextValue("x")},
		{"malformed body", "/not-json", domain.ValueTypeText, domain.NewTextValue("x")},
		{"timeout", "/slow", domain.ValueTypeText, domain.NewTextValue("x")},
		{"binary non-2xx", "/fail", domain.ValueTypeImage, domain.Value{Type: domain.ValueTypeImage, Content: []byte{1}}},
		{"binary timeout", "/slow", domain.ValueTypeAudio, domain.Value{Type: domain.ValueTypeAudio, Content: []byte{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.services.Invoker.Apply(context.Background(), env.server.filter(tt.path, tt.in, tt.in), tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUpstream)
		})
	}
}

func TestHTTPInvoker_UnreachableEndpoint(t *testing.T) {
	invoker := NewHTTPInvoker(config.FiltersConfig{}, logger.Nop())
	filter := &domain.Filter{ID: "f", ExternalURL: "http://127.0.0.1:1/none", InputType: domain.ValueTypeText, OutputType: domain.ValueTypeText}

	_, err := invoker.Apply(context.Background(), filter, domain.NewTextValue("x"))
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestHTTPInvoker_ResponseTooLarge(t *testing.T) {
	env := newTestEnv(t)
	invoker := NewHTTPInvokerWithClient(env.server.Client(), config.FiltersConfig{MaxResponseBytes: 2}, logger.Nop())

	_, err := invoker.Apply(context.Background(), env.server.filter("/reverse", domain.ValueTypeImage, domain.ValueTypeImage),
		domain.Value{Type: domain.ValueTypeImage, Content: []byte{1, 2, 3}})
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestHTTPInvoker_TypeMismatchNeverCallsRemote(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Invoker.Apply(context.Background(),
		env.server.filter("/upper", domain.ValueTypeText, domain.ValueTypeText),
		domain.Value{Type: domain.ValueTypeImage, Content: []byte{1}})
	assert.ErrorIs(t, err, apperrors.ErrTypeMismatch)
	assert.Zero(t, env.server.calls.Load())
}

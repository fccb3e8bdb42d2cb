package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"filterchat/internal/config"
	"filterchat/internal/domain"
	"filterchat/internal/metrics"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Invoker выполняет один удаленный фильтр над одним значением.
// Результат еще не сохранен: ID пустой. Повторов на этом уровне нет.
type Invoker interface {
	Apply(ctx context.Context, filter *domain.Filter, value domain.Value) (domain.Value, error)
}

const (
	textValueField         = "value"
	contentTypeJSON        = "application/json"
	contentTypeOctetStream = "application/octet-stream"
	valueTypeHeader        = "X-Value-Type"
	outputValueTypeHeader  = "X-Output-Value-Type"

	defaultMaxResponseBytes = 20 << 20
)

type httpInvoker struct {
	client           *http.Client
	timeout          time.Duration
	maxResponseBytes int64
	log              logger.Logger
}

func NewHTTPInvoker(cfg config.FiltersConfig, log logger.Logger) Invoker {
	return NewHTTPInvokerWithClient(&http.Client{Timeout: cfg.Timeout}, cfg, log)
}

func NewHTTPInvokerWithClient(client *http.Client, cfg config.FiltersConfig, log logger.Logger) Invoker {
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = defaultMaxResponseBytes
	}
	return &httpInvoker{
		client:           client,
		timeout:          cfg.Timeout,
		maxResponseBytes: cfg.MaxResponseBytes,
		log:              log,
	}
}

func (i *httpInvoker) Apply(ctx context.Context, filter *domain.Filter, value domain.Value) (domain.Value, error) {
	if !filter.Accepts(value.Type) {
		return domain.Value{}, fmt.Errorf("filter %s expects %s, got %s: %w",
			filter.ID, filter.InputType, value.Type, apperrors.ErrTypeMismatch)
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		content []byte
		err     error
	)
	if value.Type == domain.ValueTypeText {
		content, err = i.applyText(ctx, filter, value)
	} else {
		content, err = i.applyBinary(ctx, filter, value)
	}
	metrics.FilterInvocationDuration.WithLabelValues(string(value.Type)).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := metrics.OutcomeUpstream
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeTimeout
		}
		metrics.FilterInvocations.WithLabelValues(filter.ID, outcome).Inc()
		i.log.Warn("Filter call failed", "filter_id", filter.ID, "url", filter.ExternalURL, "error", err)
		return domain.Value{}, fmt.Errorf("filter %s: %w: %w", filter.ID, apperrors.ErrUpstream, err)
	}

	metrics.FilterInvocations.WithLabelValues(filter.ID, metrics.OutcomeSuccess).Inc()
	i.log.Debug("Filter applied", "filter_id", filter.ID, "duration", time.Since(start).String())

	return domain.Value{Type: filter.OutputType, Content: content}, nil
}

// applyText отправляет {"value": "..."} и ждет строку в поле value ответа.
// Если фильтр выдает бинарный тип, строка ответа - base64.
func (i *httpInvoker) applyText(ctx context.Context, filter *domain.Filter, value domain.Value) ([]byte, error) {
	payload, err := sjson.SetBytes([]byte(`{}`), textValueField, value.Text())
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	body, err := i.do(ctx, filter, contentTypeJSON, payload, value.Type)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("malformed JSON response")
	}
	field := gjson.GetBytes(body, textValueField)
	if !field.Exists() {
		return nil, fmt.Errorf("response has no %q field", textValueField)
	}
	if field.Type != gjson.String {
		return nil, fmt.Errorf("response field %q is %s, want string", textValueField, field.Type)
	}

	if filter.OutputType.IsBinary() {
		decoded, err := base64.StdEncoding.DecodeString(field.String())
		if err != nil {
			return nil, fmt.Errorf("decode %s output: %w", filter.OutputType, err)
		}
		return decoded, nil
	}
	return validText([]byte(field.String()))
}

// applyBinary отправляет сырое содержимое, тело ответа и есть результат
func (i *httpInvoker) applyBinary(ctx context.Context, filter *domain.Filter, value domain.Value) ([]byte, error) {
	body, err := i.do(ctx, filter, contentTypeOctetStream, value.Content, value.Type)
	if err != nil {
		return nil, err
	}
	if filter.OutputType == domain.ValueTypeText {
		return validText(body)
	}
	return body, nil
}

// validText не пропускает текст, который нельзя без потерь передать в JSON
func validText(content []byte) ([]byte, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("text output is not valid UTF-8")
	}
	return content, nil
}

func (i *httpInvoker) do(ctx context.Context, filter *domain.Filter, contentType string, payload []byte, valueType domain.ValueType) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, filter.ExternalURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(valueTypeHeader, string(valueType))
	req.Header.Set(outputValueTypeHeader, string(filter.OutputType))

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, i.maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > i.maxResponseBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", i.maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, nil
}

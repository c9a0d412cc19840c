package ultra

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the Ultra B2B 1C web service endpoint.
	DefaultEndpoint = "https://portal.it-ultra.com/b2b/ru/ws/b2b.1cws"
	// DefaultNamespace is the target namespace of the B2B service operations.
	DefaultNamespace = "http://www.it-ultra.com/b2b"

	soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

	// maxResponseSize caps a single SOAP response (datasets are inlined).
	maxResponseSize = 512 * 1024 * 1024
	// maxLoggedBody caps envelope bodies written to debug logs.
	maxLoggedBody = 2048
)

// Config holds the Ultra web service connection settings.
type Config struct {
	Endpoint  string
	Namespace string
	Username  string
	Password  string
	Timeout   time.Duration
	// RateLimit caps remote calls per second; 0 disables pacing.
	RateLimit float64
	Debug     bool
	// HTTPClient overrides the lazily built HTTP client.
	HTTPClient *http.Client
}

// DataResult is the reply of getDataByID.
type DataResult struct {
	Message string
	Data    string
}

// Session is a connected session to the Ultra web service. The underlying
// HTTP client and limiter are created on first use and reused for the lifetime
// of the session. A Session is meant to be used serially.
type Session struct {
	cfg Config

	once       sync.Once
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSession constructs a Session. No network traffic happens until the first call.
func NewSession(cfg Config) *Session {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Session{cfg: cfg}
}

func (s *Session) conn() *http.Client {
	s.once.Do(func() {
		s.httpClient = s.cfg.HTTPClient
		if s.httpClient == nil {
			s.httpClient = &http.Client{Timeout: s.cfg.Timeout}
		}
		if s.cfg.RateLimit > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), 1)
		}
		log.Debug().Str("endpoint", s.cfg.Endpoint).Msg("[ULTRA] Session established")
	})
	return s.httpClient
}

// RequestData asks the service to prepare a dataset and returns the request id.
func (s *Session) RequestData(ctx context.Context, service string, all bool, additionalParameters *string, compress bool) (string, error) {
	req := requestDataRequest{
		XMLName:              s.opName("requestData"),
		Service:              service,
		All:                  all,
		AdditionalParameters: additionalParameters,
		Compress:             compress,
	}
	var resp returnResponse
	if err := s.call(ctx, "requestData", req, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Return), nil
}

// IsReady reports whether the data prepared for the request id can be retrieved.
func (s *Session) IsReady(ctx context.Context, id string) (bool, error) {
	req := idRequest{XMLName: s.opName("isReady"), ID: id}
	var resp returnResponse
	if err := s.call(ctx, "isReady", req, &resp); err != nil {
		return false, err
	}
	return parseBool(resp.Return), nil
}

// GetDataByID retrieves the status message and payload for the request id.
func (s *Session) GetDataByID(ctx context.Context, id string) (*DataResult, error) {
	req := idRequest{XMLName: s.opName("getDataByID"), ID: id}
	var resp dataResponse
	if err := s.call(ctx, "getDataByID", req, &resp); err != nil {
		return nil, err
	}
	result := &DataResult{Message: resp.Message, Data: resp.Data}
	if resp.Return != nil && result.Message == "" && result.Data == "" {
		result.Message = resp.Return.Message
		result.Data = resp.Return.Data
	}
	return result, nil
}

// CommitReceivingData confirms that the changes of a service were received,
// so that the next incremental request only returns newer changes.
func (s *Session) CommitReceivingData(ctx context.Context, service string) (bool, error) {
	req := serviceRequest{XMLName: s.opName("CommitReceivingData"), Service: service}
	var resp returnResponse
	if err := s.call(ctx, "CommitReceivingData", req, &resp); err != nil {
		return false, err
	}
	return parseBool(resp.Return), nil
}

// Ping checks that the service endpoint answers. Any HTTP reply below 500 counts.
func (s *Session) Ping(ctx context.Context) error {
	client := s.conn()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint+"?wsdl", nil)
	if err != nil {
		return &TransportError{Operation: "ping", Err: err}
	}
	s.authorize(req)

	resp, err := client.Do(req)
	if err != nil {
		return &TransportError{Operation: "ping", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode >= http.StatusInternalServerError {
		return &TransportError{Operation: "ping", StatusCode: resp.StatusCode}
	}
	return nil
}

func (s *Session) opName(op string) xml.Name {
	return xml.Name{Space: s.cfg.Namespace, Local: op}
}

func (s *Session) authorize(req *http.Request) {
	if s.cfg.Username != "" && s.cfg.Password != "" {
		req.SetBasicAuth(s.cfg.Username, s.cfg.Password)
	}
}

// call performs one SOAP round trip and decodes the operation response into result.
func (s *Session) call(ctx context.Context, operation string, body any, result any) error {
	client := s.conn()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("ultra %s: rate limiter: %w", operation, err)
		}
	}

	payload, err := xml.Marshal(requestEnvelope{SoapNS: soapEnvelopeNS, Body: requestBody{Content: body}})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", operation, err)
	}
	payload = append([]byte(xml.Header), payload...)

	if s.cfg.Debug {
		log.Debug().
			Str("endpoint", s.cfg.Endpoint).
			Str("operation", operation).
			Str("request", truncate(payload)).
			Msg("[ULTRA] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Operation: operation, Err: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", strconv.Quote(s.cfg.Namespace+"#"+operation))
	s.authorize(req)

	resp, err := client.Do(req)
	if err != nil {
		return &TransportError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &TransportError{Operation: operation, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if s.cfg.Debug {
		log.Debug().
			Str("operation", operation).
			Int("status_code", resp.StatusCode).
			Str("response", truncate(respBody)).
			Msg("[ULTRA] Incoming response")
	}

	var envelope responseEnvelope
	if err := xml.Unmarshal(respBody, &envelope); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &TransportError{Operation: operation, StatusCode: resp.StatusCode}
		}
		return &TransportError{Operation: operation, Err: fmt.Errorf("failed to decode envelope: %w", err)}
	}
	if envelope.Body.Fault != nil {
		return &TransportError{Operation: operation, StatusCode: resp.StatusCode, Fault: envelope.Body.Fault}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Operation: operation, StatusCode: resp.StatusCode}
	}

	if err := xml.Unmarshal(envelope.Body.Content, result); err != nil {
		return &TransportError{Operation: operation, Err: fmt.Errorf("failed to decode %s response: %w", operation, err)}
	}
	return nil
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "..."
	}
	return string(b)
}

// internal/hikvision/session.go
package hikvision

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/sua-org/hik-sink/internal/config"
	"github.com/sua-org/hik-sink/internal/core"
	"github.com/sua-org/hik-sink/internal/metrics"
)

const (
	deviceInfoPath  = "/ISAPI/System/deviceInfo"
	triggersPath    = "/ISAPI/Event/triggers"
	alertStreamPath = "/ISAPI/Event/notification/alertStream"

	// Cameras live on the same LAN, so a flat retry is cheap and keeps the
	// worst-case recovery latency bounded.
	reconnectDelay = 3 * time.Second

	tcpKeepAlive   = 60 * time.Second
	connectTimeout = 10 * time.Second
)

// Session owns the connection to a single camera: digest-authenticated
// metadata fetches plus the long-lived multipart alert stream. One Session
// runs per configured camera for the process lifetime.
type Session struct {
	cam    config.Camera
	client *http.Client
	log    *logrus.Entry
}

func NewSession(cam config.Camera) *Session {
	return &Session{
		cam: cam,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   connectTimeout,
					KeepAlive: tcpKeepAlive,
				}).DialContext,
			},
		},
		log: logrus.WithFields(logrus.Fields{
			"camera": cam.Name,
			"id":     cam.Identifier(),
		}),
	}
}

// Run drives the connect / stream / reconnect cycle until ctx is cancelled.
// Every failure emits a Disconnected event and retries after a fixed delay;
// authentication failures retry the same way since the operator may fix the
// credentials at runtime.
func (s *Session) Run(ctx context.Context, events chan<- core.CameraEvent) {
	s.log.Info("initiating camera connection")
	for ctx.Err() == nil {
		conn, err := s.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.WithError(err).Warn("error connecting to camera")
			if !s.emit(ctx, events, core.CameraEvent{
				CameraID:     s.cam.Identifier(),
				Disconnected: &core.DisconnectedEvent{Error: fmt.Sprintf("Reconnection failure: %v", err)},
			}) {
				return
			}
			metrics.CameraReconnects.WithLabelValues(s.cam.Identifier()).Inc()
			if !sleepCtx(ctx, reconnectDelay) {
				return
			}
			continue
		}

		s.log.Info("camera connection established")
		if !s.emit(ctx, events, core.CameraEvent{
			CameraID: s.cam.Identifier(),
			Connected: &core.ConnectedEvent{
				Info:     conn.info,
				Triggers: conn.triggers,
			},
		}) {
			conn.close()
			return
		}

		for {
			alert, err := conn.nextAlert()
			if err != nil {
				conn.close()
				if ctx.Err() != nil {
					return
				}
				s.log.WithError(err).Warn("camera errored, attempting reconnection")
				if !s.emit(ctx, events, core.CameraEvent{
					CameraID:     s.cam.Identifier(),
					Disconnected: &core.DisconnectedEvent{Error: err.Error()},
				}) {
					return
				}
				metrics.CameraReconnects.WithLabelValues(s.cam.Identifier()).Inc()
				if !sleepCtx(ctx, reconnectDelay) {
					return
				}
				break
			}
			s.log.WithField("alert", alert.Identifier.Display()).Trace("camera alert")
			if !s.emit(ctx, events, core.CameraEvent{
				CameraID: s.cam.Identifier(),
				Alert:    &alert,
			}) {
				conn.close()
				return
			}
		}
	}
}

// streamConn is one established camera connection: parsed metadata plus the
// open alert stream.
type streamConn struct {
	info     core.DeviceInfo
	triggers []core.TriggerItem
	resp     *http.Response
	parts    *multipart.Reader
}

func (c *streamConn) close() {
	if c.resp != nil {
		c.resp.Body.Close()
	}
}

// nextAlert reads the next multipart part and decodes it as one
// EventNotificationAlert document.
func (c *streamConn) nextAlert() (core.AlertItem, error) {
	part, err := c.parts.NextPart()
	if err == io.EOF {
		return core.AlertItem{}, ErrConnectionClosed
	}
	if err != nil {
		return core.AlertItem{}, &StreamInvalidError{Reason: "couldn't get next part of stream", Err: err}
	}
	body, err := io.ReadAll(part)
	if err != nil {
		return core.AlertItem{}, &StreamInvalidError{Reason: "couldn't read part body", Err: err}
	}
	if !utf8.Valid(body) {
		return core.AlertItem{}, &StreamInvalidError{Reason: "stream returned non-UTF-8 text"}
	}
	return ParseAlert(string(body))
}

// connect runs the full connection sequence: device info, trigger list, then
// the alert stream with multipart validation.
func (s *Session) connect(ctx context.Context) (*streamConn, error) {
	infoText, err := s.getText(ctx, deviceInfoPath)
	if err != nil {
		return nil, err
	}
	info, err := ParseDeviceInfo(infoText)
	if err != nil {
		return nil, err
	}

	triggersText, err := s.getText(ctx, triggersPath)
	if err != nil {
		return nil, err
	}
	triggers, err := ParseTriggers(triggersText)
	if err != nil {
		return nil, err
	}

	resp, err := s.get(ctx, alertStreamPath)
	if err != nil {
		return nil, err
	}
	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		resp.Body.Close()
		return nil, &StreamInvalidError{Reason: "content type invalid", Err: err}
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		resp.Body.Close()
		return nil, &StreamInvalidError{
			Reason: fmt.Sprintf("content type on stream should have been multipart, got %s", mediaType),
		}
	}
	boundary := params["boundary"]
	if boundary == "" {
		resp.Body.Close()
		return nil, &StreamInvalidError{Reason: "multipart stream has no boundary set"}
	}

	return &streamConn{
		info:     info,
		triggers: triggers,
		resp:     resp,
		parts:    multipart.NewReader(resp.Body, boundary),
	}, nil
}

// getText performs an authenticated GET and returns the whole body as text.
func (s *Session) getText(ctx context.Context, path string) (string, error) {
	resp, err := s.get(ctx, path)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("camera returned mangled response body: %w", err)
	}
	return string(body), nil
}

// get performs the two-leg digest exchange. The first leg must come back
// 401: anything else, including a 200 from a camera that permits anonymous
// access, is treated as an authentication failure.
func (s *Session) get(ctx context.Context, path string) (*http.Response, error) {
	url := s.cam.BaseURL() + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build camera request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to camera: %w", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		drainClose(resp)
		return nil, &AuthError{
			Reason: fmt.Sprintf("could not get digest from server, status code: %d", resp.StatusCode),
		}
	}

	var challengeHeader string
	for _, h := range resp.Header.Values("WWW-Authenticate") {
		if strings.HasPrefix(h, "Digest") {
			challengeHeader = h
			break
		}
	}
	drainClose(resp)
	if challengeHeader == "" {
		return nil, &AuthError{Reason: "digest not supported by camera"}
	}
	challenge, err := parseDigestChallenge(challengeHeader)
	if err != nil {
		return nil, &AuthError{Reason: fmt.Sprintf("digest from camera could not be parsed: %v", err)}
	}

	req2, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build camera request: %w", err)
	}
	req2.Header.Set("Authorization",
		challenge.authorization(s.cam.Username, s.cam.Password, http.MethodGet, req2.URL.RequestURI()))

	resp2, err := s.client.Do(req2)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to camera: %w", err)
	}
	switch resp2.StatusCode {
	case http.StatusOK:
		return resp2, nil
	case http.StatusUnauthorized:
		drainClose(resp2)
		return nil, &AuthError{Reason: "username or password incorrect"}
	case http.StatusForbidden:
		drainClose(resp2)
		return nil, &AuthError{
			Reason: "user does not have correct permissions, ensure 'Notify Surveillance Center' is granted",
		}
	default:
		drainClose(resp2)
		return nil, &AuthError{
			Reason: fmt.Sprintf("invalid status code after auth token sent: %d", resp2.StatusCode),
		}
	}
}

func (s *Session) emit(ctx context.Context, events chan<- core.CameraEvent, ev core.CameraEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func drainClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

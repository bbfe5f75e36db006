// Package node implements the client for the external Minima ledger node's
// MDS HTTP API: command execution with the pending-confirmation handshake,
// plus the typed capability surface the session engine consumes.
package node

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gookit/slog"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
)

// Config holds the connection settings for the Minima node.
type Config struct {
	// Host is the node hostname.
	Host string `mapstructure:"host"`

	// Port is the MDS port.
	Port int `mapstructure:"port"`

	// Password is the MDS password used to establish a session.
	Password string `mapstructure:"password"`

	// UseHTTPS selects the scheme. MDS normally requires HTTPS with a
	// self-signed certificate, so verification is skipped.
	UseHTTPS bool `mapstructure:"use_https"`

	// Timeout bounds every request to the node.
	Timeout time.Duration `mapstructure:"timeout"`

	// RetryCount is the number of retries on transient 5xx responses.
	RetryCount int `mapstructure:"retry_count"`
}

// DefaultConfig provides connection settings for a local Minima node.
var DefaultConfig = Config{
	Host:       "localhost",
	Port:       9003,
	UseHTTPS:   true,
	Timeout:    30 * time.Second,
	RetryCount: 3,
}

// sessionUIDPattern extracts the MDS session uid from the login redirect
// script, e.g. window.location.href = "...?uid=0xABC123...".
var sessionUIDPattern = regexp.MustCompile(`(?i)uid=(0x[A-F0-9]+)`)

// Client talks to a Minima node over the MDS command endpoint. It implements
// session.NodeProvider plus the read-only query surface of the gateway.
type Client struct {
	http    *resty.Client
	baseURL string
	uid     string
}

// New creates a node client from the given configuration. The returned
// client is not yet authenticated; call Login before issuing commands.
func New(cfg Config) *Client {
	if cfg.Host == "" {
		cfg.Host = DefaultConfig.Host
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultConfig.Port
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig.Timeout
	}

	scheme := "http"
	if cfg.UseHTTPS {
		scheme = "https"
	}

	http := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r.StatusCode() >= 500
		}).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) // MDS serves a self-signed certificate.

	return &Client{
		http:    http,
		baseURL: fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port),
	}
}

// Login authenticates against the MDS login page and extracts the session
// uid from the redirect script. Without a password the client stays on the
// default uid, which only works on nodes with authentication disabled.
func (c *Client) Login(ctx context.Context, password string) error {
	if password == "" {
		c.uid = "0x00"
		return nil
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"password": password}).
		Post(c.baseURL + "/login.html")
	if err != nil {
		return fmt.Errorf("mds login request failed: %w", err)
	}

	match := sessionUIDPattern.FindStringSubmatch(res.String())
	if match == nil {
		return fmt.Errorf("mds login succeeded but no session uid found in response")
	}
	c.uid = match[1]
	slog.WithFields(slog.M{"category": "node"}).Debug("mds session established")
	return nil
}

// commandEnvelope is the response wrapper every MDS command returns.
type commandEnvelope struct {
	Status     bool            `json:"status"`
	Pending    bool            `json:"pending"`
	PendingUID string          `json:"pendinguid"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Response   json.RawMessage `json:"response"`
}

func (e *commandEnvelope) detail() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != "" {
		return e.Error
	}
	return "unknown node error"
}

// Command executes a raw node command and returns its response payload.
// A pending response (the node's two-step confirm flow) is confirmed with
// exactly one follow-up call, never a loop. An explicit node rejection is
// surfaced as a remote-rejected session error with the node's detail
// carried verbatim.
func (c *Client) Command(ctx context.Context, cmd string) (json.RawMessage, error) {
	envelope, err := c.post(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if envelope.Pending && envelope.PendingUID != "" {
		slog.WithFields(slog.M{"category": "node", "pendinguid": envelope.PendingUID}).
			Debug("command pending, issuing confirmation")
		envelope, err = c.post(ctx, fmt.Sprintf("mds action:confirm uid:%s", envelope.PendingUID))
		if err != nil {
			return nil, err
		}
	}

	if !envelope.Status {
		return nil, session.NewRemoteRejectedError(envelope.detail())
	}
	if len(envelope.Response) > 0 {
		return envelope.Response, nil
	}
	return json.RawMessage("{}"), nil
}

func (c *Client) post(ctx context.Context, cmd string) (*commandEnvelope, error) {
	if c.uid == "" {
		return nil, fmt.Errorf("not authenticated: no mds session uid")
	}

	slog.WithFields(slog.M{"category": "node", "command": commandName(cmd)}).Debug("executing node command")

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetBody(url.QueryEscape(cmd)).
		Post(fmt.Sprintf("%s/mdscommand_/cmd?uid=%s", c.baseURL, c.uid))
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, session.NewRemoteRejectedError(fmt.Sprintf("node returned HTTP %d", res.StatusCode()))
	}

	var envelope commandEnvelope
	if err := json.Unmarshal(res.Body(), &envelope); err != nil {
		return nil, session.NewRemoteRejectedError("node returned invalid JSON")
	}
	return &envelope, nil
}

// commandName returns the command word without its parameters, safe to log.
func commandName(cmd string) string {
	if i := strings.IndexByte(cmd, ' '); i > 0 {
		return cmd[:i]
	}
	return cmd
}

// commandBuilder assembles the node's "name key:value key:value" command
// syntax with deterministic parameter ordering.
type commandBuilder struct {
	sb strings.Builder
}

func newCommand(name string) *commandBuilder {
	b := &commandBuilder{}
	b.sb.WriteString(name)
	return b
}

func (b *commandBuilder) param(key, value string) *commandBuilder {
	if value == "" {
		return b
	}
	b.sb.WriteByte(' ')
	b.sb.WriteString(key)
	b.sb.WriteByte(':')
	b.sb.WriteString(value)
	return b
}

func (b *commandBuilder) String() string { return b.sb.String() }

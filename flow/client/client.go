// Package client implements the initiating side of the request/response
// protocol: it opens one channel per request, waits for the paired terminal
// message and correlates responses back to requests by id through an explicit
// session table.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/flow/appmessage"
	"github.com/ilhambagus/pos-android-sdk/flow/models"
	"github.com/ilhambagus/pos-android-sdk/internal/channel"
)

// ErrNoResponse is returned when a channel closes without delivering a
// terminal message for the request that opened it.
var ErrNoResponse = errors.New("channel closed without a response")

// Client initiates request/response exchanges with flow and payment services.
// It is safe for concurrent use; each exchange runs on its own channel.
type Client struct {
	logger       *slog.Logger
	internalData *appmessage.InternalData

	mu       sync.Mutex
	sessions map[string]chan *models.Response
}

func New(logger *slog.Logger) *Client {
	return &Client{
		logger:       logger.With(slog.String("component", "flow-client")),
		internalData: appmessage.NewInternalData(),
		sessions:     make(map[string]chan *models.Response),
	}
}

// ProcessRequest sends req to the service at target and blocks until the
// correlated response, a failure or context cancellation. A declined business
// outcome is a successful response; a *appmessage.FlowError is returned only
// when the participant could not complete the exchange.
func (c *Client) ProcessRequest(ctx context.Context, target string, req *models.Request) (*models.Response, error) {
	payload, err := req.ToJSON()
	if err != nil {
		return nil, err
	}

	respCh := c.openSession(req.ID())
	defer c.closeSession(req.ID())

	terminal, err := c.Exchange(ctx, target, models.StageGeneric, payload)
	if err != nil {
		return nil, err
	}

	if terminal.InternalData.Flag(appmessage.FlagBackgroundProcessing) == "true" {
		return &models.Response{
			RequestID:            req.ID(),
			RequestType:          req.RequestType(),
			Success:              true,
			BackgroundProcessing: true,
		}, nil
	}

	resp, err := models.ResponseFromJSON(terminal.Data())
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.ID(), err)
	}
	c.route(resp)

	select {
	case resp := <-respCh:
		return resp, nil
	default:
		return nil, fmt.Errorf("request %s: %w", req.ID(), ErrNoResponse)
	}
}

// Exchange performs one raw channel round-trip: it sends payload as a request
// tagged with the given flow stage and returns the terminal response message.
// A FAILURE message surfaces as a typed *appmessage.FlowError.
func (c *Client) Exchange(ctx context.Context, target, stage, payload string) (appmessage.AppMessage, error) {
	ch, err := channel.Dial(ctx, target)
	if err != nil {
		return appmessage.AppMessage{}, err
	}
	defer ch.Close()

	internalData := c.internalData.Clone()
	internalData.SetFlag(appmessage.FlagFlowStage, stage)
	if err := ch.Send(appmessage.NewAppMessage(appmessage.TypeRequest, payload, internalData)); err != nil {
		return appmessage.AppMessage{}, err
	}

	type received struct {
		msg appmessage.AppMessage
		err error
	}
	msgs := make(chan received)
	go func() {
		for {
			msg, err := ch.Receive()
			select {
			case msgs <- received{msg, err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			ch.Close()
			return appmessage.AppMessage{}, ctx.Err()
		case r := <-msgs:
			if r.err != nil {
				return appmessage.AppMessage{}, fmt.Errorf("waiting for response: %w", r.err)
			}
			switch r.msg.MessageType {
			case appmessage.TypeRequestAck:
				c.logger.Debug("request acknowledged", slog.String("stage", stage))
			case appmessage.TypeResponse:
				return r.msg, nil
			case appmessage.TypeFailure:
				flowErr, err := appmessage.FlowErrorFromJSON(r.msg.Data())
				if err != nil {
					return appmessage.AppMessage{}, fmt.Errorf("parsing failure payload: %w", err)
				}
				return appmessage.AppMessage{}, flowErr
			default:
				c.logger.Warn("ignoring unexpected message", slog.String("type", r.msg.MessageType))
			}
		}
	}
}

func (c *Client) openSession(id string) chan *models.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	respCh := make(chan *models.Response, 1)
	c.sessions[id] = respCh
	return respCh
}

func (c *Client) closeSession(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
}

// route delivers a response to the session holding its request id. A response
// whose id has no open session is a redundant or late artifact, not
// corruption: it is logged and discarded.
func (c *Client) route(resp *models.Response) {
	c.mu.Lock()
	respCh, ok := c.sessions[resp.RequestID]
	c.mu.Unlock()
	if !ok {
		c.logger.Warn("discarding response with no open session", slog.String("requestId", resp.RequestID))
		return
	}
	select {
	case respCh <- resp:
	default:
		c.logger.Warn("discarding duplicate response", slog.String("requestId", resp.RequestID))
	}
}

// Package service hosts the participant side of the request/response
// protocol: a base service loop accepting channels and a communicator used to
// answer the client.
package service

import (
	"fmt"

	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/flow/appmessage"
	"github.com/ilhambagus/pos-android-sdk/internal/channel"
)

// ClientCommunicator talks back to the client over one request's channel. One
// communicator exists per incoming request; after the first terminal send it
// refuses further sends.
type ClientCommunicator struct {
	logger       *slog.Logger
	ch           *channel.Conn
	internalData *appmessage.InternalData
}

func newClientCommunicator(logger *slog.Logger, ch *channel.Conn, internalData *appmessage.InternalData) *ClientCommunicator {
	return &ClientCommunicator{
		logger:       logger,
		ch:           ch,
		internalData: internalData,
	}
}

// SendAck signals "received, processing started". It is emitted once, before
// any further message.
func (c *ClientCommunicator) SendAck() error {
	c.logger.Debug("sending ack")
	return c.ch.Send(appmessage.NewAppMessage(appmessage.TypeRequestAck, "", c.internalData))
}

// SendResponseAndEnd emits the terminal response message followed by the
// end-of-stream marker. No further sends are permitted afterwards.
func (c *ClientCommunicator) SendResponseAndEnd(payload string) error {
	if err := c.ch.Send(appmessage.NewAppMessage(appmessage.TypeResponse, payload, c.internalData)); err != nil {
		return err
	}
	return c.ch.SendEndStream()
}

// SendFailureAndEnd emits a terminal failure carrying a structured error,
// followed by end of stream. Failures mean this participant could not complete
// the exchange; they are never used for declined business outcomes.
func (c *ClientCommunicator) SendFailureAndEnd(code, message string) error {
	payload, err := appmessage.NewFlowError(code, message).ToJSON()
	if err != nil {
		return err
	}
	c.logger.Debug("sending failure", slog.String("code", code), slog.String("message", message))
	if err := c.ch.Send(appmessage.NewAppMessage(appmessage.TypeFailure, payload, c.internalData)); err != nil {
		return err
	}
	return c.ch.SendEndStream()
}

// NotifyBackgroundProcessing tells the client this service will finish its
// work in the background and no user-facing continuation will occur. This is
// a terminal send.
func (c *ClientCommunicator) NotifyBackgroundProcessing() error {
	c.logger.Debug("notifying background processing")
	internalData := c.internalData.Clone()
	internalData.SetFlag(appmessage.FlagBackgroundProcessing, "true")
	if err := c.ch.Send(appmessage.NewAppMessage(appmessage.TypeResponse, appmessage.EmptyData, internalData)); err != nil {
		return err
	}
	return c.ch.SendEndStream()
}

// FinishWithNoResponse terminates the exchange with an empty response.
func (c *ClientCommunicator) FinishWithNoResponse() error {
	return c.SendResponseAndEnd(appmessage.EmptyData)
}

// Terminated reports whether a terminal message has been sent.
func (c *ClientCommunicator) Terminated() bool {
	return c.ch.TerminalSent()
}

func (c *ClientCommunicator) String() string {
	return fmt.Sprintf("communicator(v%s)", c.internalData.APIVersion)
}

package iso8583

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/moov-io/iso8583"
	connection "github.com/moov-io/iso8583-connection"
	"github.com/moov-io/iso8583/network"
)

// AuthorizationRequest asks the card host to authorize one card round.
type AuthorizationRequest struct {
	CardNumber string
	CardExpiry string // YYMM
	Amount     int64
	Currency   string
	TerminalID string
	MerchantID string
}

// AuthorizationResponse is the host's decision.
type AuthorizationResponse struct {
	Approved          bool
	ResponseCode      string
	AuthorizationCode string
}

// Client holds one connection to the card host. Responses are matched to
// requests by STAN.
type Client struct {
	conn *connection.Connection
	stan atomic.Int64
}

// Connect dials the card host at addr.
func Connect(addr string) (*Client, error) {
	conn, err := connection.New(
		addr,
		Spec,
		readMessageLength,
		writeMessageLength,
		connection.SendTimeout(5*time.Second),
		connection.IdleTime(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("creating card host connection: %w", err)
	}
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to card host %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Authorize sends an 0100 authorization request and waits for the paired
// 0110 response.
func (c *Client) Authorize(req AuthorizationRequest) (AuthorizationResponse, error) {
	msg := iso8583.NewMessage(Spec)
	msg.MTI("0100")
	if err := msg.Field(2, req.CardNumber); err != nil {
		return AuthorizationResponse{}, fmt.Errorf("setting card number: %w", err)
	}
	if err := msg.Field(3, "000000"); err != nil {
		return AuthorizationResponse{}, fmt.Errorf("setting processing code: %w", err)
	}
	if err := msg.Field(4, fmt.Sprintf("%012d", req.Amount)); err != nil {
		return AuthorizationResponse{}, fmt.Errorf("setting amount: %w", err)
	}
	if err := msg.Field(11, fmt.Sprintf("%06d", c.nextSTAN())); err != nil {
		return AuthorizationResponse{}, fmt.Errorf("setting stan: %w", err)
	}
	if err := msg.Field(14, req.CardExpiry); err != nil {
		return AuthorizationResponse{}, fmt.Errorf("setting expiry: %w", err)
	}
	if err := msg.Field(41, req.TerminalID); err != nil {
		return AuthorizationResponse{}, fmt.Errorf("setting terminal id: %w", err)
	}
	if err := msg.Field(42, req.MerchantID); err != nil {
		return AuthorizationResponse{}, fmt.Errorf("setting merchant id: %w", err)
	}
	if err := msg.Field(49, req.Currency); err != nil {
		return AuthorizationResponse{}, fmt.Errorf("setting currency: %w", err)
	}

	response, err := c.conn.Send(msg)
	if err != nil {
		return AuthorizationResponse{}, fmt.Errorf("sending authorization request: %w", err)
	}

	responseCode, err := response.GetString(39)
	if err != nil {
		return AuthorizationResponse{}, fmt.Errorf("reading response code: %w", err)
	}
	authCode, err := response.GetString(38)
	if err != nil {
		return AuthorizationResponse{}, fmt.Errorf("reading authorization code: %w", err)
	}

	return AuthorizationResponse{
		Approved:          responseCode == ResponseCodeApproved,
		ResponseCode:      responseCode,
		AuthorizationCode: authCode,
	}, nil
}

// Close tears down the card host connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) nextSTAN() int64 {
	// STAN is 6 digits; wrap before overflowing the field.
	return c.stan.Add(1) % 1000000
}

func readMessageLength(r io.Reader) (int, error) {
	header := network.NewBinary2BytesHeader()
	if _, err := header.ReadFrom(r); err != nil {
		return 0, err
	}
	return header.Length(), nil
}

func writeMessageLength(w io.Writer, length int) (int, error) {
	header := network.NewBinary2BytesHeader()
	header.SetLength(length)
	n, err := header.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("writing message header: %w", err)
	}
	return n, nil
}

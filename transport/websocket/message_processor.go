package websocket

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const (
	opContinuation byte = 0x0
	opText         byte = 0x1
	opBinary       byte = 0x2
	opClose        byte = 0x8
	opPing         byte = 0x9
	opPong         byte = 0xA

	maxPayloadSize = 1 << 16
)

var (
	ErrPayloadTooLarge = errors.New("frame payload is too large")
	ErrConnectionClose = errors.New("connection closed by peer")
	ErrUnmaskedFrame   = errors.New("client frame is not masked")
	ErrUnexpectedFrame = errors.New("unexpected continuation frame")
)

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	masked  bool
	opCode  byte
	payload []byte
}

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is the body of both requests and responses. Requests fill the
// session and index fields, responses carry the view or an error.
type Payload struct {
	SessionID string          `json:"session_id,omitempty"`
	Size      int             `json:"size,omitempty"`
	Cell      *int            `json:"cell,omitempty"`
	Move      *int            `json:"move,omitempty"`
	View      *tictactoe.View `json:"view,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func (that *Server) sendMessage(bufrw *bufio.ReadWriter, action string, payload Payload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	responseBytes, err := json.Marshal(Message{
		Action:  action,
		Payload: payloadBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	f := frame{
		isFin:   true,
		opCode:  opText,
		payload: responseBytes,
	}

	if err = writeFrame(bufrw.Writer, f, nil); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(bufrw *bufio.ReadWriter, action, message string) error {
	return that.sendMessage(bufrw, action, Payload{Error: message})
}

// writeFrame encodes f; a non-nil mask is applied to the payload as clients must do.
func writeFrame(writer *bufio.Writer, f frame, mask []byte) error {
	header := make([]byte, 2, 14)
	header[0] = f.opCode
	if f.isFin {
		header[0] |= 0x80
	}

	length := uint64(len(f.payload))
	switch {
	case length < 126:
		header[1] = byte(length)
	case length < 1<<16:
		header[1] = 126
		header = binary.BigEndian.AppendUint16(header, uint16(length))
	default:
		header[1] = 127
		header = binary.BigEndian.AppendUint64(header, length)
	}

	payload := f.payload
	if mask != nil {
		header[1] |= 0x80
		header = append(header, mask...)
		payload = applyMask(payload, mask)
	}

	if _, err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}

	if _, err := writer.Write(payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

func readFrame(reader *bufio.Reader) (frame, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(reader, header); err != nil {
		return frame{}, fmt.Errorf("failed to read header: %w", err)
	}

	f := frame{
		isFin:  header[0]&0x80 != 0,
		opCode: header[0] & 0x0f,
		masked: header[1]&0x80 != 0,
	}

	size, err := readPayloadLength(reader, header[1]&0x7f)
	if err != nil {
		return frame{}, err
	}

	if size > maxPayloadSize {
		return frame{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, size)
	}

	var mask []byte
	if f.masked {
		mask = make([]byte, 4)
		if _, err = io.ReadFull(reader, mask); err != nil {
			return frame{}, fmt.Errorf("failed to read mask: %w", err)
		}
	}

	payload := make([]byte, size)
	if _, err = io.ReadFull(reader, payload); err != nil {
		return frame{}, fmt.Errorf("failed to read payload: %w", err)
	}

	if mask != nil {
		payload = applyMask(payload, mask)
	}

	f.payload = payload

	return f, nil
}

func readPayloadLength(reader *bufio.Reader, payloadLen byte) (uint64, error) {
	switch payloadLen {
	case 126:
		length := make([]byte, 2)
		if _, err := io.ReadFull(reader, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return uint64(binary.BigEndian.Uint16(length)), nil
	case 127:
		length := make([]byte, 8)
		if _, err := io.ReadFull(reader, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return binary.BigEndian.Uint64(length), nil
	default:
		return uint64(payloadLen), nil
	}
}

func applyMask(payload, mask []byte) []byte {
	out := make([]byte, len(payload))
	for i := range payload {
		out[i] = payload[i] ^ mask[i%4]
	}
	return out
}

// readRequest returns the next complete text message, joining continuation
// frames and answering pings on the way. Binary messages are read and dropped.
func (that *Server) readRequest(bufrw *bufio.ReadWriter) ([]byte, error) {
	var (
		message  []byte
		assembly byte
		inFlight bool
	)

	for {
		f, err := readFrame(bufrw.Reader)
		if err != nil {
			return nil, err
		}

		if !f.masked {
			_ = writeFrame(bufrw.Writer, frame{isFin: true, opCode: opClose, payload: closePayload(closeProtocolError)}, nil)
			return nil, ErrUnmaskedFrame
		}

		switch f.opCode {
		case opClose:
			_ = writeFrame(bufrw.Writer, frame{isFin: true, opCode: opClose, payload: f.payload}, nil)
			return nil, ErrConnectionClose
		case opPing:
			if err = writeFrame(bufrw.Writer, frame{isFin: true, opCode: opPong, payload: f.payload}, nil); err != nil {
				return nil, err
			}
			continue
		case opPong:
			continue
		case opText, opBinary:
			assembly, inFlight = f.opCode, !f.isFin
			message = message[:0]
		case opContinuation:
			if !inFlight {
				return nil, ErrUnexpectedFrame
			}
			inFlight = !f.isFin
		default:
			continue
		}

		if assembly != opText {
			continue
		}

		message = append(message, f.payload...)
		if len(message) > maxPayloadSize {
			return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(message))
		}

		if f.isFin {
			return message, nil
		}
	}
}

const closeProtocolError = 1002

func closePayload(code uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, code)
}

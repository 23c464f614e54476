package messenger

import (
	"fmt"

	"github.com/ardelle/go-ecboot/protocol"
)

// State is the client-tracked session state. The wire protocol carries no
// session token; the state lives entirely in the Messenger instance.
type State int

const (
	// StateIdle means no firmware update session is open
	StateIdle State = iota

	// StateUpdateStarted means an update-start was acknowledged and chunk
	// writes may follow
	StateUpdateStarted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUpdateStarted:
		return "update-started"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Messenger is a session-oriented client for one embedded controller. It
// owns exactly one transport for its whole lifetime and performs strictly
// synchronous exchanges: one send, one blocking receive bounded by the
// configured timeout, no pipelining and no internal retry.
//
// A Messenger must not be used concurrently from multiple goroutines; it
// provides no internal locking. Construct one Messenger (and transport) per
// goroutine instead.
type Messenger struct {
	transport Transport
	config    Config
	state     State
}

// New creates a Messenger talking to the device at serverAddr (host:port)
// and opens the transport immediately.
//
// Example:
//
//	m, err := messenger.New("192.168.7.10:7450",
//	    messenger.WithTimeout(5*time.Second),
//	)
func New(serverAddr string, opts ...Option) (*Messenger, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	t := cfg.Transport
	if t == nil {
		var err error
		t, err = DialUDP(serverAddr, cfg.LocalAddr)
		if err != nil {
			return nil, fmt.Errorf("open transport: %w", err)
		}
	}

	return &Messenger{
		transport: t,
		config:    cfg,
		state:     StateIdle,
	}, nil
}

// Close releases the transport. An outstanding receive aborts with a
// closed-resource error. Closing is the only way to interrupt a blocked
// operation.
func (m *Messenger) Close() error {
	return m.transport.Close()
}

// State returns the client-tracked session state.
func (m *Messenger) State() State {
	return m.state
}

// SendAndRecv sends one raw packet and blocks for the response, for up to
// the configured timeout. If the response carries the error opcode its
// payload is decoded and a protocol.DeviceError is returned; otherwise the
// raw response bytes are handed back for opcode-specific decoding.
//
// Timeouts propagate uninterpreted (see IsTimeout); they are never retried
// here. With no sequence numbers on an unreliable transport, a lost request
// and a lost response are indistinguishable, so retry decisions belong to
// the caller, who knows which operations are idempotent.
func (m *Messenger) SendAndRecv(pkt []byte) ([]byte, error) {
	if err := m.transport.Send(pkt); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	resp, err := m.transport.Recv(protocol.MaxPacketSize, m.config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("recv: %w", err)
	}

	hdr, err := protocol.DecodeHeader(resp)
	if err != nil {
		return nil, err
	}

	if hdr.OpCode == protocol.OpError {
		code, err := protocol.ParseErrorResponse(resp)
		if err != nil {
			return nil, err
		}
		return nil, &protocol.DeviceError{Code: code}
	}

	return resp, nil
}

// exchange performs one request/response round trip and confirms the
// response opcode.
func (m *Messenger) exchange(req []byte, wantOp byte) ([]byte, error) {
	resp, err := m.SendAndRecv(req)
	if err != nil {
		return nil, err
	}

	hdr, err := protocol.DecodeHeader(resp)
	if err != nil {
		return nil, err
	}
	if hdr.OpCode != wantOp {
		return nil, &UnexpectedOpcodeError{Got: hdr.OpCode, Want: wantOp}
	}

	return resp, nil
}

// GetVersion queries API and bootloader version information.
func (m *Messenger) GetVersion() (*protocol.VersionInfo, error) {
	resp, err := m.exchange(protocol.BuildVersionCmd(), protocol.OpVersionResponse)
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}

	info, err := protocol.ParseVersionResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}

	m.config.Logger.WithFields(map[string]interface{}{
		"api":        fmt.Sprintf("%d.%d", info.APIMajor, info.APIMinor),
		"bootloader": fmt.Sprintf("%d.%d.%d", info.BootloaderMajor, info.BootloaderMinor, info.BootloaderBuild),
	}).Debug("got device version")

	return info, nil
}

// StartUpdate opens a firmware update session, declaring the total image
// size in bytes. On success the session transitions to StateUpdateStarted.
//
// The response carries no explicit status: absence of an error response is
// success.
func (m *Messenger) StartUpdate(imageSize uint32) error {
	resp, err := m.exchange(protocol.BuildUpdateStartCmd(imageSize), protocol.OpUpdateStartResponse)
	if err != nil {
		return fmt.Errorf("start update: %w", err)
	}
	if err := protocol.ParseUpdateStartResponse(resp); err != nil {
		return fmt.Errorf("start update: %w", err)
	}

	m.state = StateUpdateStarted
	m.config.Logger.WithField("image_size", imageSize).Debug("update session started")
	return nil
}

// Write sends one firmware chunk of 1 to 1024 bytes. Chunks must arrive in
// original image order with no gaps or overlaps; the protocol does not
// enforce this, the caller must. Size violations fail before any network
// activity.
//
// A write retried after an ambiguous timeout may double-apply on the
// device, which performs no deduplication.
func (m *Messenger) Write(data []byte) error {
	req, err := protocol.BuildWriteCmd(data)
	if err != nil {
		return err
	}

	resp, err := m.exchange(req, protocol.OpWriteResponse)
	if err != nil {
		return fmt.Errorf("write %d bytes: %w", len(data), err)
	}
	return protocol.ParseWriteResponse(resp)
}

// StopUpdate closes the update session, supplying the CRC32 over the
// complete firmware image. The device answers with the CRC32 it computed
// over the bytes it received; the update succeeded only if the two match
// exactly (CRCMismatchError otherwise).
//
// A stop attempt ends the client-side session whatever the outcome.
func (m *Messenger) StopUpdate(crc uint32) error {
	defer func() { m.state = StateIdle }()

	resp, err := m.exchange(protocol.BuildUpdateStopCmd(crc), protocol.OpUpdateStopResponse)
	if err != nil {
		return fmt.Errorf("stop update: %w", err)
	}

	deviceCRC, err := protocol.ParseUpdateStopResponse(resp)
	if err != nil {
		return fmt.Errorf("stop update: %w", err)
	}

	if uint32(deviceCRC) != crc {
		return &CRCMismatchError{Sent: crc, Device: deviceCRC}
	}

	m.config.Logger.WithField("crc", fmt.Sprintf("0x%08X", crc)).Debug("update session stopped")
	return nil
}

// Reset asks the device to reset. The device may reset before its reply
// leaves the wire, so a timeout here often means the reset was taken but
// could not be confirmed. The timeout is propagated rather than swallowed;
// callers that accept unconfirmed resets can test it with IsTimeout.
func (m *Messenger) Reset() error {
	resp, err := m.exchange(protocol.BuildResetCmd(), protocol.OpResetResponse)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return protocol.ParseResetResponse(resp)
}

// ReadAddress reads length bytes of raw device memory starting at address.
func (m *Messenger) ReadAddress(address, length uint32) ([]byte, error) {
	req, err := protocol.BuildReadAddressCmd(address, length)
	if err != nil {
		return nil, err
	}

	resp, err := m.exchange(req, protocol.OpReadResponse)
	if err != nil {
		return nil, fmt.Errorf("read 0x%08X: %w", address, err)
	}

	data, err := protocol.ParseReadAddressResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("read 0x%08X: %w", address, err)
	}
	return data, nil
}

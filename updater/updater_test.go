package updater

import (
	"context"
	"hash/crc32"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardelle/go-ecboot/messenger"
	"github.com/ardelle/go-ecboot/protocol"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "recv timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// deviceTransport simulates the device side of the protocol behind the
// Transport interface: update session state machine, running CRC32 over
// received chunks, per-chunk CRC verification, simulated memory.
type deviceTransport struct {
	pending []byte

	updating   bool
	imageSize  uint32
	received   uint32
	runningCRC uint32
	memory     []byte

	muteReset  bool
	failWrites int
	writes     int
}

func newDeviceTransport() *deviceTransport {
	return &deviceTransport{memory: make([]byte, 4096)}
}

func (d *deviceTransport) Send(p []byte) error {
	d.pending = d.handle(p)
	return nil
}

func (d *deviceTransport) Recv(maxLen int, timeout time.Duration) ([]byte, error) {
	if d.pending == nil {
		return nil, timeoutError{}
	}
	resp := d.pending
	d.pending = nil
	return resp, nil
}

func (d *deviceTransport) Close() error { return nil }

func (d *deviceTransport) handle(pkt []byte) []byte {
	hdr, _, err := protocol.ValidatePacket(pkt)
	if err != nil {
		return nil // a corrupt datagram gets no answer
	}

	switch hdr.OpCode {
	case protocol.OpVersionRequest:
		info := &protocol.VersionInfo{APIMajor: 1, APIMinor: 2, BootloaderMajor: 3, BootloaderMinor: 4, BootloaderBuild: 500}
		copy(info.Note[:], "simulated device")
		return protocol.BuildVersionResponse(info)

	case protocol.OpUpdateStartRequest:
		size, err := protocol.ParseUpdateStartCmd(pkt)
		if err != nil {
			return nil
		}
		d.updating = true
		d.imageSize = size
		d.received = 0
		d.runningCRC = 0
		return protocol.BuildUpdateStartResponse()

	case protocol.OpWriteRequest:
		if !d.updating {
			return protocol.BuildErrorResponse(protocol.DevErrIncorrectState)
		}
		data, dataCRC, err := protocol.ParseWriteCmd(pkt)
		if err != nil {
			return nil
		}
		if crc32.ChecksumIEEE(data) != dataCRC {
			return protocol.BuildErrorResponse(protocol.DevErrWriteFailed)
		}
		d.writes++
		if d.failWrites > 0 && d.writes > d.failWrites {
			return protocol.BuildErrorResponse(protocol.DevErrWriteFailed)
		}
		d.runningCRC = crc32.Update(d.runningCRC, crc32.IEEETable, data)
		d.received += uint32(len(data))
		return protocol.BuildWriteResponse()

	case protocol.OpUpdateStopRequest:
		if !d.updating {
			return protocol.BuildErrorResponse(protocol.DevErrIncorrectState)
		}
		d.updating = false
		return protocol.BuildUpdateStopResponse(int32(d.runningCRC))

	case protocol.OpResetRequest:
		if d.muteReset {
			return nil // device resets before replying
		}
		return protocol.BuildResetResponse()

	case protocol.OpReadRequest:
		addr, length, err := protocol.ParseReadAddressCmd(pkt)
		if err != nil || int(addr)+int(length) > len(d.memory) {
			return protocol.BuildErrorResponse(protocol.DevErrUnsupportedOperation)
		}
		resp, err := protocol.BuildReadAddressResponse(d.memory[addr:addr+length], length)
		if err != nil {
			return nil
		}
		return resp

	default:
		return protocol.BuildErrorResponse(protocol.DevErrUnsupportedOperation)
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newSimMessenger(t *testing.T, dev *deviceTransport) *messenger.Messenger {
	t.Helper()

	m, err := messenger.New("",
		messenger.WithTransport(dev),
		messenger.WithLogger(quietLogger()),
	)
	require.NoError(t, err)
	return m
}

func testImage(size int) []byte {
	image := make([]byte, size)
	for i := range image {
		image[i] = byte(i * 7)
	}
	return image
}

func TestUpdateEndToEnd(t *testing.T) {
	// The reference scenario: a 2048-byte image moves as two full chunks
	// and the device-side CRC matches at stop.
	dev := newDeviceTransport()
	m := newSimMessenger(t, dev)

	var phases []string
	u := New(m,
		WithLogger(quietLogger()),
		WithProgressCallback(func(p Progress) { phases = append(phases, p.Phase) }),
	)

	image := testImage(2048)
	require.NoError(t, u.Update(context.Background(), image))

	assert.Equal(t, 2, dev.writes)
	assert.Equal(t, uint32(2048), dev.received)
	assert.Equal(t, crc32.ChecksumIEEE(image), dev.runningCRC)
	assert.Equal(t, messenger.StateIdle, m.State())

	assert.Equal(t, []string{PhaseStarting, PhaseWriting, PhaseWriting, PhaseFinishing, PhaseComplete}, phases)
}

func TestUpdateOddSizedImage(t *testing.T) {
	dev := newDeviceTransport()
	m := newSimMessenger(t, dev)
	u := New(m, WithLogger(quietLogger()), WithChunkSize(512))

	image := testImage(2500) // 512+512+512+512+452
	require.NoError(t, u.Update(context.Background(), image))
	assert.Equal(t, 5, dev.writes)
	assert.Equal(t, uint32(2500), dev.received)
}

func TestStopWithWrongCRCFails(t *testing.T) {
	// Same transfer, but the caller supplies crc^1 at stop: the exchange
	// decodes fine and the mismatch is detected client-side.
	dev := newDeviceTransport()
	m := newSimMessenger(t, dev)

	image := testImage(2048)
	require.NoError(t, m.StartUpdate(uint32(len(image))))
	require.NoError(t, m.Write(image[:1024]))
	require.NoError(t, m.Write(image[1024:]))

	err := m.StopUpdate(crc32.ChecksumIEEE(image) ^ 1)
	require.Error(t, err)

	var cm *messenger.CRCMismatchError
	require.ErrorAs(t, err, &cm)
	assert.Equal(t, int32(crc32.ChecksumIEEE(image)), cm.Device)
}

func TestSingleByteDifferenceFailsStop(t *testing.T) {
	// A one-byte difference anywhere in the transmitted image changes the
	// CRC32 and must fail the stop.
	dev := newDeviceTransport()
	m := newSimMessenger(t, dev)

	image := testImage(2048)
	sent := make([]byte, len(image))
	copy(sent, image)
	sent[777] ^= 0xFF

	require.NoError(t, m.StartUpdate(uint32(len(sent))))
	require.NoError(t, m.Write(sent[:1024]))
	require.NoError(t, m.Write(sent[1024:]))

	err := m.StopUpdate(crc32.ChecksumIEEE(image))
	var cm *messenger.CRCMismatchError
	require.ErrorAs(t, err, &cm)
}

func TestWriteBeforeStartRejected(t *testing.T) {
	dev := newDeviceTransport()
	m := newSimMessenger(t, dev)

	err := m.Write([]byte{0x01, 0x02})
	require.Error(t, err)

	var de *protocol.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, byte(protocol.DevErrIncorrectState), de.Code)
}

func TestUpdateAbortsOnWriteFailure(t *testing.T) {
	dev := newDeviceTransport()
	dev.failWrites = 1 // flash rejects everything after the first chunk
	m := newSimMessenger(t, dev)
	u := New(m, WithLogger(quietLogger()))

	err := u.Update(context.Background(), testImage(4096))
	require.Error(t, err)

	var de *protocol.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, byte(protocol.DevErrWriteFailed), de.Code)
}

func TestUpdateCancelled(t *testing.T) {
	dev := newDeviceTransport()
	m := newSimMessenger(t, dev)
	u := New(m, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := u.Update(ctx, testImage(2048))
	require.ErrorIs(t, err, context.Canceled)
}

func TestUpdateWithUnconfirmedReset(t *testing.T) {
	// Devices commonly reset before acknowledging; the resulting timeout
	// must not fail the update.
	dev := newDeviceTransport()
	dev.muteReset = true
	m := newSimMessenger(t, dev)
	u := New(m, WithLogger(quietLogger()), WithResetAfter(true))

	require.NoError(t, u.Update(context.Background(), testImage(1024)))
}

func TestUpdateWithConfirmedReset(t *testing.T) {
	dev := newDeviceTransport()
	m := newSimMessenger(t, dev)
	u := New(m, WithLogger(quietLogger()), WithResetAfter(true))

	require.NoError(t, u.Update(context.Background(), testImage(1024)))
}

func TestUpdateEmptyImage(t *testing.T) {
	dev := newDeviceTransport()
	m := newSimMessenger(t, dev)
	u := New(m, WithLogger(quietLogger()))

	require.Error(t, u.Update(context.Background(), nil))
	assert.Equal(t, 0, dev.writes)
}

func TestReadAddressAgainstSimulatedMemory(t *testing.T) {
	dev := newDeviceTransport()
	for i := range dev.memory {
		dev.memory[i] = byte(i)
	}
	m := newSimMessenger(t, dev)

	data, err := m.ReadAddress(16, 8)
	require.NoError(t, err)
	assert.Equal(t, dev.memory[16:24], data)
}

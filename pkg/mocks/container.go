package mocks

import (
	"context"
	"io"

	"github.com/user/framesampler/pkg/ports"
)

// ContainerReader replays a fixed packet sequence.
type ContainerReader struct {
	InfoValue ports.ContainerInfo

	// Order lists the stream index of each packet in container order.
	Order []int

	// FailAt makes the n-th NextPacket call (1-based) return FailErr.
	FailAt  int
	FailErr error

	CloseErr error

	// Recorded calls for verification
	NextCalls       int
	PacketsReturned int
	PacketsReleased int
	CloseCalls      int
}

// NewContainerReader creates a reader over streams emitting packets for
// the stream indices in order.
func NewContainerReader(streams []ports.StreamDescriptor, order []int) *ContainerReader {
	return &ContainerReader{
		InfoValue: ports.ContainerInfo{FormatName: "mock", Streams: streams},
		Order:     order,
	}
}

func (m *ContainerReader) Info() ports.ContainerInfo {
	return m.InfoValue
}

func (m *ContainerReader) NextPacket() (*ports.Packet, error) {
	m.NextCalls++
	if m.FailAt > 0 && m.NextCalls == m.FailAt {
		return nil, m.FailErr
	}
	if m.PacketsReturned >= len(m.Order) {
		return nil, io.EOF
	}
	n := m.PacketsReturned
	m.PacketsReturned++
	return ports.NewPacket(m.Order[n], []byte{byte(n)}, int64(n), n == 0, func() {
		m.PacketsReleased++
	}), nil
}

func (m *ContainerReader) Close() error {
	m.CloseCalls++
	return m.CloseErr
}

var _ ports.ContainerReader = (*ContainerReader)(nil)

// ContainerOpener hands out one ContainerReader.
type ContainerOpener struct {
	Reader  *ContainerReader
	OpenErr error

	OpenCalls []string
}

func (m *ContainerOpener) Open(ctx context.Context, path string) (ports.ContainerReader, error) {
	m.OpenCalls = append(m.OpenCalls, path)
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	return m.Reader, nil
}

var _ ports.ContainerOpener = (*ContainerOpener)(nil)

//go:build !linux

package output

// Virtual is only available on Linux.
type Virtual struct{ Recorder }

func NewVirtual(string) (*Virtual, error) {
	return nil, ErrUnsupported
}

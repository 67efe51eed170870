package epub

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
)

// ErrVerify is wrapped by every failure reported by Verify.
var ErrVerify = errors.New("output verification failed")

// Verify re-reads a written container and checks the structural rules a
// reader relies on: mimetype first, stored, without extra field or data
// descriptor and with the expected body, and every passthrough entry
// byte-identical to its input (by digest).
func Verify(zr *zip.Reader, res *Result) error {
	if err := CheckMimetype(zr); err != nil {
		return fmt.Errorf("%w: %v", ErrVerify, err)
	}
	first := zr.File[0]
	if first.Method != zip.Store {
		return fmt.Errorf("%w: mimetype entry is compressed (method %d)", ErrVerify, first.Method)
	}
	if len(first.Extra) != 0 {
		return fmt.Errorf("%w: mimetype entry has a %d-byte extra field", ErrVerify, len(first.Extra))
	}
	if first.Flags&0x8 != 0 {
		return fmt.Errorf("%w: mimetype entry uses a data descriptor", ErrVerify)
	}
	body, err := readEntry(first)
	if err != nil {
		return err
	}
	if string(body) != MimetypeContent {
		return fmt.Errorf("%w: mimetype body is %q", ErrVerify, body)
	}

	if res == nil {
		return nil
	}
	if len(zr.File) != res.Written {
		return fmt.Errorf("%w: archive has %d entries, wrote %d", ErrVerify, len(zr.File), res.Written)
	}

	seen := 0
	for _, f := range zr.File[1:] {
		want, ok := res.Digests[f.Name]
		if !ok {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		h := newDigest()
		_, err = io.Copy(h, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read entry %s: %w", f.Name, err)
		}
		if got := h.sumHex(); got != want {
			return fmt.Errorf("%w: %s changed (blake3 %s, want %s)", ErrVerify, f.Name, got, want)
		}
		seen++
	}
	if seen != len(res.Digests) {
		return fmt.Errorf("%w: %d passthrough entries missing", ErrVerify, len(res.Digests)-seen)
	}
	return nil
}

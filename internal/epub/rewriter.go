package epub

import (
	"archive/zip"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
)

// ErrNotEPUB is returned when the first entry of the input is not "mimetype".
var ErrNotEPUB = errors.New("not a valid epub file")

// DocumentProcessor annotates one HTML/XHTML document. Calls arrive in
// archive order, one at a time.
type DocumentProcessor interface {
	ProcessDocumentText(doc string) string
}

// Options tunes a rewrite.
type Options struct {
	Logger   *slog.Logger
	Prefetch int // entries decompressed ahead of the writer; 0 disables read-ahead
}

// Result describes a finished rewrite.
type Result struct {
	Written  int          // entries written, mimetype included
	Counts   map[Role]int // per role, mimetype included
	Skipped  []string     // unsafe entry names left out
	Metadata Metadata     // from the package document, if any
	// Digests maps each passthrough (RoleOther) entry to the hex BLAKE3
	// digest of its bytes.
	Digests map[string]string
}

// CheckMimetype verifies the container's first entry is named "mimetype".
func CheckMimetype(zr *zip.Reader) error {
	if len(zr.File) == 0 || zr.File[0].Name != MimetypeName {
		return ErrNotEPUB
	}
	return nil
}

// fetched is an input entry read ahead of the writer.
type fetched struct {
	file *zip.File
	data []byte
	skip bool // directory or unsafe name
	err  error
}

// Rewrite copies every entry of zr to w in storage order, annotating HTML
// entries through proc and extending stylesheets. The mimetype entry is
// written first and stored; everything else is deflated. Nothing is written
// when the input is not an EPUB.
func Rewrite(ctx context.Context, zr *zip.Reader, w io.Writer, proc DocumentProcessor, opts Options) (*Result, error) {
	if err := CheckMimetype(zr); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	res := &Result{
		Counts:  make(map[Role]int),
		Digests: make(map[string]string),
	}

	zw := zip.NewWriter(w)
	if err := writeMimetype(zw); err != nil {
		return nil, err
	}
	res.Written++
	res.Counts[RoleMimetype]++

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for fe := range prefetch(ctx, zr.File[1:], opts.Prefetch) {
		if fe.err != nil {
			return res, fe.err
		}
		if fe.skip {
			if !fe.file.FileInfo().IsDir() {
				logger.Warn("skipping unsafe entry", "path", fe.file.Name)
				res.Skipped = append(res.Skipped, fe.file.Name)
			}
			continue
		}

		entry := Entry{Path: fe.file.Name, Raw: fe.data, Role: Classify(fe.file.Name)}
		out, changed := transform(entry, proc)

		logger.Info("writing", "path", entry.Path, "role", entry.Role.String(),
			"size", humanize.Bytes(uint64(len(out))), "annotated", changed)

		ew, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entry.Path,
			Method:   zip.Deflate,
			Modified: fe.file.Modified,
		})
		if err != nil {
			return res, fmt.Errorf("create entry %s: %w", entry.Path, err)
		}
		if _, err := ew.Write(out); err != nil {
			return res, fmt.Errorf("write entry %s: %w", entry.Path, err)
		}

		res.Written++
		res.Counts[entry.Role]++
		if entry.Role == RoleOther {
			res.Digests[entry.Path] = digest(out)
			if strings.HasSuffix(entry.Path, ".opf") {
				if md, err := ReadMetadata(out); err != nil {
					logger.Warn("unreadable package document", "path", entry.Path, "error", err)
				} else {
					res.Metadata = md
				}
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := zw.Close(); err != nil {
		return res, fmt.Errorf("finish archive: %w", err)
	}
	return res, nil
}

// writeMimetype writes the mimetype entry raw: stored, sizes and CRC in the
// local header, no extra field and no data descriptor, so the body starts
// at byte 38 of the archive.
func writeMimetype(zw *zip.Writer) error {
	body := []byte(MimetypeContent)
	mw, err := zw.CreateRaw(&zip.FileHeader{
		Name:               MimetypeName,
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(body),
		CompressedSize64:   uint64(len(body)),
		UncompressedSize64: uint64(len(body)),
	})
	if err != nil {
		return fmt.Errorf("create mimetype entry: %w", err)
	}
	if _, err := mw.Write(body); err != nil {
		return fmt.Errorf("write mimetype entry: %w", err)
	}
	return nil
}

// transform returns the bytes to write for an entry and whether they differ
// from the input. Undecodable text entries pass through unchanged.
func transform(e Entry, proc DocumentProcessor) ([]byte, bool) {
	switch e.Role {
	case RoleHTML:
		c := Decode(e.Raw)
		if !c.Decoded() {
			return e.Raw, false
		}
		return []byte(proc.ProcessDocumentText(c.Text)), true
	case RoleCSS:
		c := Decode(e.Raw)
		if !c.Decoded() {
			return e.Raw, false
		}
		return []byte(c.Text + PitchAccentCSS), true
	default:
		return e.Raw, false
	}
}

// prefetch reads entries in order on a separate goroutine, keeping up to
// depth of them decompressed ahead of the consumer. The channel is closed
// after the last entry, after an error, or when ctx is done.
func prefetch(ctx context.Context, files []*zip.File, depth int) <-chan fetched {
	if depth < 0 {
		depth = 0
	}
	ch := make(chan fetched, depth)

	go func() {
		defer close(ch)
		for _, f := range files {
			fe := fetched{file: f}
			if f.FileInfo().IsDir() || !safePath(f.Name) {
				fe.skip = true
			} else {
				fe.data, fe.err = readEntry(f)
			}

			select {
			case ch <- fe:
			case <-ctx.Done():
				return
			}
			if fe.err != nil {
				return
			}
		}
	}()
	return ch
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", f.Name, err)
	}
	return data, nil
}

func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digester streams entry bytes into a BLAKE3 hash.
type digester struct {
	*blake3.Hasher
}

func newDigest() digester {
	return digester{blake3.New()}
}

func (d digester) sumHex() string {
	return hex.EncodeToString(d.Sum(nil))
}

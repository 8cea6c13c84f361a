package tabix

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brentp/irelate/interfaces"
	"github.com/carbocation/bix"
	"github.com/carbocation/pfx"
	"github.com/cenkalti/backoff"
	"github.com/labstack/gommon/log"
)

const (
	IndexSuffix = ".tbi"

	openRetries = 3
)

var (
	chrColumnNames = []string{"chr", "chrom", "chromosome", "tag_chrom"}
	posColumnNames = []string{"pos", "position", "start", "tag_pos"}
)

type (
	// Store opens range-indexed resource files.
	Store interface {
		Open(path string) (File, error)
	}

	// File is one bgzipped, tab-delimited resource file with a tabix index.
	File interface {
		Path() string
		// Header is the first line of the file, split on tabs, as written.
		Header() []string
		// Identity changes whenever the file on disk is replaced.
		Identity() string
		// Query returns the rows overlapping any of the regions, split on tabs.
		Query(ctx context.Context, regions []Region) ([][]string, error)
		// Stream writes the header line (optionally) and the raw rows of the region.
		Stream(ctx context.Context, w io.Writer, region Region, includeHeader bool) error
		Close() error
	}

	BixStore struct {
		Workers int
	}

	bixFile struct {
		path     string
		header   []string
		identity string
		chrCol   int
		posCol   int
		workers  int

		// the tabix reader seeks a shared bgzf handle
		mu  sync.Mutex
		tbx *bix.Bix
	}
)

func NewBixStore(workers int) *BixStore {
	if workers < 1 {
		workers = 1
	}
	return &BixStore{Workers: workers}
}

func (s *BixStore) Open(path string) (File, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if _, err := os.Stat(path + IndexSuffix); err != nil {
		return nil, pfx.Err(fmt.Errorf("index file %s%s does not exist", path, IndexSuffix))
	}

	header, err := ReadHeader(path)
	if err != nil {
		return nil, err
	}

	var tbx *bix.Bix
	openIndex := func() error {
		var openErr error
		tbx, openErr = bix.New(path, s.Workers)
		return openErr
	}
	if err := backoff.Retry(openIndex, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), openRetries)); err != nil {
		return nil, pfx.Err(err)
	}

	f := &bixFile{
		path:     path,
		header:   header,
		identity: fmt.Sprintf("%s|%d|%d", path, stat.Size(), stat.ModTime().UnixNano()),
		chrCol:   findColumn(header, chrColumnNames, 0),
		posCol:   findColumn(header, posColumnNames, 1),
		workers:  s.Workers,
		tbx:      tbx,
	}
	return f, nil
}

func (f *bixFile) Path() string {
	return f.path
}

func (f *bixFile) Header() []string {
	return f.header
}

func (f *bixFile) Identity() string {
	return f.identity
}

func (f *bixFile) Query(ctx context.Context, regions []Region) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rows := make([][]string, 0)
	for _, region := range MergeRegions(regions) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := f.readRegion(f.tbx, region, func(line string) {
			rows = append(rows, strings.Split(line, "\t"))
		})
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (f *bixFile) Stream(ctx context.Context, w io.Writer, region Region, includeHeader bool) error {
	start := time.Now()

	// streams can be long; use a private reader instead of holding the shared one
	tbx, err := bix.New(f.path, f.workers)
	if err != nil {
		return pfx.Err(err)
	}
	defer tbx.Close()

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	if includeHeader {
		if _, err := bw.WriteString(strings.Join(f.header, "\t") + "\n"); err != nil {
			return err
		}
	}

	var writeErr error
	err = f.readRegion(tbx, region, func(line string) {
		if writeErr != nil || ctx.Err() != nil {
			return
		}
		_, writeErr = bw.WriteString(line + "\n")
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	log.Debugf("streamed %s %s in %.3fs", f.path, region, time.Since(start).Seconds())
	return ctx.Err()
}

func (f *bixFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tbx.Close()
}

// readRegion calls fn for every data line inside the region. Index chunks
// are coarser than the region so lines are checked against it.
func (f *bixFile) readRegion(tbx *bix.Bix, region Region, fn func(line string)) error {
	rc, err := chunkedReader(tbx, region)
	if err != nil {
		return pfx.Err(err)
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.SplitN(line, "\t", maxInt(f.chrCol, f.posCol)+2)
		if len(fields) <= maxInt(f.chrCol, f.posCol) {
			continue
		}
		pos, err := strconv.Atoi(fields[f.posCol])
		if err != nil {
			// the header line of files without a '#' prefix
			continue
		}
		if !region.Contains(fields[f.chrCol], pos) {
			continue
		}
		fn(line)
	}
	if err := scanner.Err(); err != nil {
		return pfx.Err(err)
	}
	return nil
}

// chunkedReader reads the index chunks overlapping pos. bix retries the
// chromosome with and without a "chr" prefix.
func chunkedReader(tbx *bix.Bix, pos interfaces.IPosition) (io.ReadCloser, error) {
	return tbx.ChunkedReader(pos.Chrom(), int(pos.Start()), int(pos.End()))
}

// ReadHeader returns the first line of a (b)gzipped file split on tabs.
func ReadHeader(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer fh.Close()

	gz, err := gzip.NewReader(fh)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer gz.Close()

	line, err := bufio.NewReader(gz).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, pfx.Err(err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, pfx.Err(fmt.Errorf("%s has no header line", path))
	}
	return strings.Split(line, "\t"), nil
}

// ColumnIndex maps header names (without a leading '#') to their position.
func ColumnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimPrefix(strings.TrimSpace(h), "#")] = i
	}
	return idx
}

func findColumn(header []string, names []string, fallback int) int {
	idx := ColumnIndex(header)
	for _, name := range names {
		if i, ok := idx[name]; ok {
			return i
		}
	}
	return fallback
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

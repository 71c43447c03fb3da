package downloader

import "io"

// ChunkSize bounds every read from the registry stream.
const ChunkSize = 32 * 1024

// ProgressFunc receives the bytes read so far and the announced total (-1 when unknown).
type ProgressFunc func(done, total int64)

// Observer returns the progress callback of one bulk refresh unit; it may return nil.
type Observer func(key string) ProgressFunc

// progressReader reports progress after every bounded chunk.
type progressReader struct {
	reader   io.Reader
	total    int64
	done     int64
	progress ProgressFunc
}

func newProgressReader(reader io.Reader, total int64, progress ProgressFunc) *progressReader {
	return &progressReader{
		reader:   reader,
		total:    total,
		progress: progress,
	}
}

func (p *progressReader) Read(b []byte) (int, error) {
	if len(b) > ChunkSize {
		b = b[:ChunkSize]
	}

	n, err := p.reader.Read(b)
	if n > 0 {
		p.done += int64(n)

		if p.progress != nil {
			p.progress(p.done, p.total)
		}
	}

	return n, err
}

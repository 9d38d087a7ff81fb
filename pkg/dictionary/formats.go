package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

// FileFormat identifies a dictionary file layout.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatChunk              // dict_NNNN.bin
	FormatCompressedChunk    // dict_NNNN.bin.zst
	FormatText               // word and count per line
)

func (f FileFormat) String() string {
	switch f {
	case FormatChunk:
		return "chunk"
	case FormatCompressedChunk:
		return "compressed chunk"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// maxChunkWords is a sanity bound on a chunk header.
const maxChunkWords = 1_000_000

// ErrBadChunk is returned for chunk files whose header or entries cannot be decoded.
var ErrBadChunk = errors.New("malformed dictionary chunk")

// Entry is one word of a chunk with its rank, 1 being the most common.
type Entry struct {
	Word string
	Rank uint16
}

// Score converts a rank into a score where higher means more common.
func Score(rank uint16) int {
	return 65536 - int(rank)
}

// DetectFileFormat guesses the format from the file name and checks the header fits it.
func DetectFileFormat(filename string) (FileFormat, error) {
	base := strings.ToLower(filepath.Base(filename))
	var format FileFormat
	switch {
	case strings.HasSuffix(base, compressedExt):
		format = FormatCompressedChunk
	case strings.HasSuffix(base, chunkExt):
		format = FormatChunk
	case strings.HasSuffix(base, ".txt"):
		format = FormatText
	default:
		return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
	}
	if err := ValidateFileFormat(filename, format); err != nil {
		return FormatUnknown, err
	}
	return format, nil
}

// ValidateFileFormat checks that filename can be read as format.
func ValidateFileFormat(filename string, format FileFormat) error {
	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file %s is empty", filename)
	}

	switch format {
	case FormatChunk, FormatCompressedChunk:
		count, err := readWordCount(filename, format == FormatCompressedChunk)
		if err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
		log.Debugf("Binary file %s validated: %d words", filename, count)
	case FormatText:
		log.Debugf("Text file %s validated", filename)
	default:
		return fmt.Errorf("unknown format: %v", format)
	}
	return nil
}

// LoadFile reads a dictionary file of any supported format into word scores.
func LoadFile(path string) (map[string]int, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	if format == FormatText {
		return LoadText(path)
	}
	return ReadChunk(path)
}

// ReadChunk decodes a whole chunk file. Files ending in .zst are decompressed first.
func ReadChunk(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk file %s: %w", path, err)
	}
	defer f.Close()

	r, closer, err := chunkReader(f, strings.HasSuffix(path, ".zst"))
	if err != nil {
		return nil, err
	}
	defer closer()

	total, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	words := make(map[string]int, total)
	for i := 0; i < total; i++ {
		var wordLen uint16
		if err := binary.Read(r, binary.LittleEndian, &wordLen); err != nil {
			return nil, fmt.Errorf("%w: entry %d: word length: %v", ErrBadChunk, i, err)
		}
		word := make([]byte, wordLen)
		if _, err := io.ReadFull(r, word); err != nil {
			return nil, fmt.Errorf("%w: entry %d: word: %v", ErrBadChunk, i, err)
		}
		var rank uint16
		if err := binary.Read(r, binary.LittleEndian, &rank); err != nil {
			return nil, fmt.Errorf("%w: entry %d: rank: %v", ErrBadChunk, i, err)
		}
		if score := Score(rank); score > words[string(word)] {
			words[string(word)] = score
		}
	}
	return words, nil
}

// WriteChunk encodes entries as a chunk file, compressing it when path ends in .zst.
func WriteChunk(path string, entries []Entry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := enc.Close(); err == nil {
				err = cerr
			}
		}()
		w = enc
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if len(e.Word) > 0xFFFF {
			return fmt.Errorf("word too long for a chunk: %d bytes", len(e.Word))
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(e.Word))); err != nil {
			return err
		}
		if _, err := bw.WriteString(e.Word); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, e.Rank); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadText reads "word count" lines. A line holding only a word counts once; blank lines and
// lines starting with # are skipped.
func LoadText(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open text dictionary %s: %w", path, err)
	}
	defer f.Close()

	words := make(map[string]int)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		count := 1
		if len(fields) > 1 {
			if count, err = strconv.Atoi(fields[1]); err != nil {
				return nil, fmt.Errorf("%s:%d: bad count %q", path, line, fields[1])
			}
		}
		words[fields[0]] += count
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return words, nil
}

func chunkReader(r io.Reader, compressed bool) (io.Reader, func(), error) {
	if !compressed {
		return bufio.NewReader(r), func() {}, nil
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open zstd stream: %w", err)
	}
	return dec, dec.Close, nil
}

func readHeader(r io.Reader) (int, error) {
	var total int32
	if err := binary.Read(r, binary.LittleEndian, &total); err != nil {
		return 0, fmt.Errorf("%w: header: %v", ErrBadChunk, err)
	}
	if total < 0 || total > maxChunkWords {
		return 0, fmt.Errorf("%w: word count %d out of range", ErrBadChunk, total)
	}
	return int(total), nil
}

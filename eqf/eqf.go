/*
 * eqf.go, part of gobalance.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package eqf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/lzw"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	lzwLitwidth int = 8
	headerMark      = "#"
)

//Writer writes equation files.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	filename  string
	writeable bool
	n         int
}

//NewWriter creates the file name and writes the header to it, one key=value
//pair per line, sorted by key. header can be nil. An optional compression level
//is used for gzip and deflate files.
func NewWriter(name string, header map[string]string, compressionLevel ...int) (*Writer, error) {
	level := flate.BestCompression
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	for k := range header {
		if strings.ContainsAny(k, "=\n") {
			return nil, &Error{fmt.Sprintf("invalid header key %q", k), name, []string{"NewWriter"}, true}
		}
	}
	S := &Writer{filename: name}
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, &Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	var AnyNewWriter func(io.Writer) (io.WriteCloser, error)
	switch compression(name) {
	case "zst":
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		}
	case "gz":
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, level) }
	case "flate":
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return flate.NewWriter(a, level) }
	case "lzw":
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return lzw.NewWriter(a, lzw.MSB, lzwLitwidth), nil }
	default:
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return nopWriteCloser{a}, nil }
	}
	S.h, err = AnyNewWriter(S.f)
	if err != nil {
		S.f.Close()
		return nil, &Error{"can't start compression: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.writeable = true
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.ReplaceAll(header[k], "\n", " ")
		if _, err := fmt.Fprintf(S.h, "%s%s=%s\n", headerMark, k, v); err != nil {
			S.Close()
			return nil, &Error{"can't write header: " + err.Error(), name, []string{"NewWriter"}, true}
		}
	}
	return S, nil
}

//WNext writes one equation to the file. line must not contain newlines.
func (S *Writer) WNext(line string) error {
	if !S.writeable {
		return &Error{UnIniWrite, S.filename, []string{"WNext"}, true}
	}
	line = strings.TrimSpace(line)
	if strings.ContainsAny(line, "\n\r") {
		return &Error{fmt.Sprintf("equation %q spans several lines", line), S.filename, []string{"WNext"}, false}
	}
	if line == "" || strings.HasPrefix(line, headerMark) {
		return &Error{fmt.Sprintf("%q would not be read back as an equation", line), S.filename, []string{"WNext"}, false}
	}
	if _, err := io.WriteString(S.h, line+"\n"); err != nil {
		return &Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	S.n++
	return nil
}

//Len returns the number of equations written so far.
func (S *Writer) Len() int {
	return S.n
}

//Close flushes the compressor and closes the file. The Writer
//can't be used after this call.
func (S *Writer) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.h.Close()
	if err2 := S.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return &Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

//Reader reads equation files.
type Reader struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	filename string
	pending  string //first equation, read together with the header
	line     int
	readable bool
}

//zstd decoders don't implement io.ReadCloser.
type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

//New opens an equation file for reading, and returns the handle and the header
//(an empty map if the file has none).
func New(name string) (*Reader, map[string]string, error) {
	S := &Reader{filename: name}
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, &Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	var AnyNewReader func(io.Reader) (io.ReadCloser, error)
	switch compression(name) {
	case "zst":
		AnyNewReader = func(a io.Reader) (io.ReadCloser, error) {
			r, err := zstd.NewReader(a)
			if err != nil {
				return nil, err
			}
			return zstdCloser{r}, nil
		}
	case "gz":
		AnyNewReader = func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	case "flate":
		AnyNewReader = func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	case "lzw":
		AnyNewReader = func(a io.Reader) (io.ReadCloser, error) { return lzw.NewReader(a, lzw.MSB, lzwLitwidth), nil }
	default:
		AnyNewReader = func(a io.Reader) (io.ReadCloser, error) { return io.NopCloser(a), nil }
	}
	S.dec, err = AnyNewReader(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, &Error{"can't start decompression: " + err.Error(), name, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	S.readable = true
	header := make(map[string]string)
	for {
		str, err := S.readLine()
		if errors.Is(err, io.EOF) {
			break //a file with only a header, or nothing at all.
		}
		if err != nil {
			S.Close()
			return nil, nil, errDecorate(err, "New")
		}
		if !strings.HasPrefix(str, headerMark) {
			S.pending = str
			break
		}
		kv := strings.SplitN(strings.TrimPrefix(str, headerMark), "=", 2)
		if len(kv) == 2 {
			header[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	return S, header, nil
}

//readLine returns the next non-blank line, trimmed.
func (S *Reader) readLine() (string, error) {
	for {
		str, err := S.h.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", &Error{ReadError + ": " + err.Error(), S.filename, []string{"readLine"}, true}
		}
		if len(str) > 0 {
			S.line++
		}
		str = strings.TrimSpace(str)
		if str != "" {
			return str, nil
		}
		if err != nil {
			return "", io.EOF
		}
	}
}

//Readable returns true if it is possible to call Next on the handle.
func (S *Reader) Readable() bool {
	return S.readable
}

//Next returns the next equation in the file. At the end of the file it closes
//the handle and returns io.EOF.
func (S *Reader) Next() (string, error) {
	if !S.readable {
		return "", &Error{UnIniRead, S.filename, []string{"Next"}, true}
	}
	if S.pending != "" {
		ret := S.pending
		S.pending = ""
		return ret, nil
	}
	for {
		str, err := S.readLine()
		if errors.Is(err, io.EOF) {
			S.Close()
			return "", io.EOF
		}
		if err != nil {
			return "", errDecorate(err, "Next")
		}
		if strings.HasPrefix(str, headerMark) {
			continue
		}
		return str, nil
	}
}

//Line returns the line number of the last line read.
func (S *Reader) Line() int {
	return S.line
}

//Close closes the file, and marks the handle as unreadable.
func (S *Reader) Close() {
	if !S.readable {
		return
	}
	S.dec.Close()
	S.f.Close()
	S.readable = false
}

//ReadAll reads every equation in the file name.
func ReadAll(name string) ([]string, map[string]string, error) {
	S, header, err := New(name)
	if err != nil {
		return nil, nil, errDecorate(err, "ReadAll")
	}
	defer S.Close()
	var ret []string
	for {
		l, err := S.Next()
		if errors.Is(err, io.EOF) {
			return ret, header, nil
		}
		if err != nil {
			return ret, header, errDecorate(err, "ReadAll")
		}
		ret = append(ret, l)
	}
}

//compression returns the compression scheme for the file name, or "" for none.
func compression(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".zst", ".gz", ".flate", ".lzw":
		return ext[1:]
	}
	return ""
}

//Errors

//Error is the error type for equation files.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	return fmt.Sprintf("equation file %s error: %s", err.filename, err.message)
}

//Decorate adds the caller's name to the error and returns the trail.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file the error is associated with.
func (err *Error) FileName() string { return err.filename }

//Critical returns false if the handle is still usable after the error.
func (err *Error) Critical() bool { return err.critical }

const (
	UnIniRead    = "handle not initialized for reading"
	UnIniWrite   = "handle not initialized for writing"
	ReadError    = "error reading line"
	UnableToOpen = "unable to open file"
)

//errDecorate adds caller to the trail of err if err has one.
func errDecorate(err error, caller string) error {
	if d, ok := err.(interface{ Decorate(string) []string }); ok {
		d.Decorate(caller)
	}
	return err
}

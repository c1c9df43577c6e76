// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// LZ4Extension marks files that are transparently lz4 compressed
const LZ4Extension = ".lz4"

type lz4ReadCloser struct {
	*lz4.Reader
	fh *os.File
}

func (r *lz4ReadCloser) Close() error {
	return r.fh.Close()
}

type lz4WriteCloser struct {
	*lz4.Writer
	fh *os.File
}

// Close flushes the lz4 frame before closing the file
func (w *lz4WriteCloser) Close() error {
	if err := w.Writer.Close(); err != nil {
		w.fh.Close()
		return err
	}
	return w.fh.Close()
}

// OpenFile opens path for reading. Files ending in .lz4 are decompressed.
func OpenFile(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(path, LZ4Extension) {
		return fh, nil
	}

	return &lz4ReadCloser{Reader: lz4.NewReader(fh), fh: fh}, nil
}

// CreateFile creates or truncates path for writing. Files ending in .lz4 are
// compressed; the returned writer must be closed to flush the last block.
func CreateFile(path string) (io.WriteCloser, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(path, LZ4Extension) {
		return fh, nil
	}

	return &lz4WriteCloser{Writer: lz4.NewWriter(fh), fh: fh}, nil
}

// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import "fmt"

// ReplaceHead returns a new buffer with the image head of the JPEG buffer b
// replaced by head. The compressed image data of b is copied unchanged.
// b is not modified.
func ReplaceHead(b, head []byte) ([]byte, error) {
	if len(head) < 2 || head[0] != 0xff || head[1] != 0xd8 {
		return nil, fmt.Errorf("new head: %w", ErrMalformedHeader)
	}

	n, err := HeadLength(b)
	if err != nil {
		return nil, err
	}

	body := b[n:]
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head...)
	out = append(out, body...)
	return out, nil
}

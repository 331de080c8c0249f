package server

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Frame codec names accepted by the codec query parameter
const (
	CodecPNG    = "png"
	CodecSnappy = "snappy"
	CodecZstd   = "zstd"
)

// FrameCodec encodes display images into binary websocket frames.
// Close releases any encoder state; the codec must not be used afterwards.
type FrameCodec interface {
	Name() string
	Encode(img *image.RGBA) ([]byte, error)
	Close() error
}

// NewFrameCodec returns the codec registered under name
func NewFrameCodec(name string) (FrameCodec, error) {
	switch name {
	case CodecPNG:
		return pngCodec{}, nil
	case CodecSnappy:
		return snappyCodec{}, nil
	case CodecZstd:
		return newZstdCodec()
	default:
		return nil, checkCodec(name)
	}
}

// checkCodec validates a codec name without building its encoder
func checkCodec(name string) error {
	switch name {
	case CodecPNG, CodecSnappy, CodecZstd:
		return nil
	}
	return fmt.Errorf("unknown codec %q", name)
}

// pngCodec sends self-describing PNG images
type pngCodec struct{}

func (pngCodec) Name() string { return CodecPNG }

func (pngCodec) Encode(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png frame: %w", err)
	}
	return buf.Bytes(), nil
}

func (pngCodec) Close() error { return nil }

// snappyCodec sends raw RGBA bytes in a snappy block; the size comes from the hello message
type snappyCodec struct{}

func (snappyCodec) Name() string { return CodecSnappy }

func (snappyCodec) Encode(img *image.RGBA) ([]byte, error) {
	return snappy.Encode(nil, img.Pix), nil
}

func (snappyCodec) Close() error { return nil }

// zstdCodec sends raw RGBA bytes in a zstd frame
type zstdCodec struct {
	encoder *zstd.Encoder
}

func newZstdCodec() (*zstdCodec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	return &zstdCodec{encoder: encoder}, nil
}

func (*zstdCodec) Name() string { return CodecZstd }

func (c *zstdCodec) Encode(img *image.RGBA) ([]byte, error) {
	if c.encoder == nil {
		return nil, errors.New("zstd codec is closed")
	}
	return c.encoder.EncodeAll(img.Pix, nil), nil
}

// Close stops the encoder's background state. Closing twice is a no-op.
func (c *zstdCodec) Close() error {
	if c.encoder == nil {
		return nil
	}
	err := c.encoder.Close()
	c.encoder = nil
	return err
}

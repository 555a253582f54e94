package exif

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// tiffEntry запись IFD; value в little-endian
type tiffEntry struct {
	tag, typ uint16
	count    uint32
	value    []byte
}

const (
	typeByte     = 1
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5
)

func ascii(tag uint16, s string) tiffEntry {
	v := append([]byte(s), 0)
	n := uint32(len(v))
	if len(v)%2 == 1 {
		v = append(v, 0)
	}
	return tiffEntry{tag: tag, typ: typeASCII, count: n, value: v}
}

func long(tag uint16, v uint32) tiffEntry {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return tiffEntry{tag: tag, typ: typeLong, count: 1, value: b}
}

func rational(tag uint16, num, den uint32) tiffEntry {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b, num)
	binary.LittleEndian.PutUint32(b[4:], den)
	return tiffEntry{tag: tag, typ: typeRational, count: 1, value: b}
}

func ifdSize(entries []tiffEntry) int {
	n := 2 + 12*len(entries) + 4
	for _, e := range entries {
		if len(e.value) > 4 {
			n += len(e.value)
		}
	}
	return n
}

func writeIFD(buf *bytes.Buffer, entries []tiffEntry, offset int) {
	le := binary.LittleEndian
	extra := offset + 2 + 12*len(entries) + 4
	var data []byte

	_ = binary.Write(buf, le, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(buf, le, e.tag)
		_ = binary.Write(buf, le, e.typ)
		_ = binary.Write(buf, le, e.count)
		if len(e.value) <= 4 {
			v := make([]byte, 4)
			copy(v, e.value)
			buf.Write(v)
			continue
		}
		_ = binary.Write(buf, le, uint32(extra+len(data)))
		data = append(data, e.value...)
	}
	_ = binary.Write(buf, le, uint32(0))
	buf.Write(data)
}

// droneJPEG JPEG с EXIF как у снимка с дрона
func droneJPEG(t *testing.T, altRef byte) []byte {
	t.Helper()

	exifIFD := []tiffEntry{
		ascii(0x9003, "2024:05:01 10:00:00"),
		rational(0x920A, 88, 10),
		long(0xA002, 5472),
		long(0xA003, 3648),
	}
	gpsIFD := []tiffEntry{
		{tag: 0x0005, typ: typeByte, count: 1, value: []byte{altRef}},
		rational(0x0006, 4520, 100),
	}
	ifd0 := []tiffEntry{ascii(0x0110, "FC6310 "), long(0x8769, 0), long(0x8825, 0)}

	off0 := 8
	offExif := off0 + ifdSize(ifd0)
	offGPS := offExif + ifdSize(exifIFD)
	ifd0[1] = long(0x8769, uint32(offExif))
	ifd0[2] = long(0x8825, uint32(offGPS))

	var tiffBuf bytes.Buffer
	tiffBuf.WriteString("II")
	_ = binary.Write(&tiffBuf, binary.LittleEndian, uint16(42))
	_ = binary.Write(&tiffBuf, binary.LittleEndian, uint32(off0))
	writeIFD(&tiffBuf, ifd0, off0)
	writeIFD(&tiffBuf, exifIFD, offExif)
	writeIFD(&tiffBuf, gpsIFD, offGPS)

	payload := append([]byte("Exif\x00\x00"), tiffBuf.Bytes()...)

	var body bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.White)
	require.NoError(t, imaging.Encode(&body, img, imaging.JPEG))

	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(body.Bytes()[2:]) // без SOI
	return out.Bytes()
}

func TestReader_ReadsDroneMetadata(t *testing.T) {
	meta, err := NewReader().Read(droneJPEG(t, 0))
	require.NoError(t, err)

	require.InDelta(t, 8.8, meta.FocalLengthMM, 1e-9)
	require.Equal(t, 5472, meta.PixelWidth)
	require.Equal(t, 3648, meta.PixelHeight)
	require.Equal(t, "FC6310", meta.Model)
	require.Equal(t, "2024:05:01 10:00:00", meta.DateTime)
	require.InDelta(t, 45.2, meta.AltitudeM, 1e-9)
	require.InDelta(t, 13.2, meta.SensorWidthMM(), 1e-9)
}

func TestReader_BelowSeaLevelAltitudeIsNegative(t *testing.T) {
	meta, err := NewReader().Read(droneJPEG(t, 1))
	require.NoError(t, err)
	require.InDelta(t, -45.2, meta.AltitudeM, 1e-9)
	// отрицательная высота считается отсутствующей
	require.Equal(t, 30.0, meta.Resolved().AltitudeM)
}

func TestReader_NoExif(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4)), imaging.PNG))

	meta, err := NewReader().Read(buf.Bytes())
	require.ErrorIs(t, err, ErrNoMetadata)
	require.Zero(t, meta)

	_, err = NewReader().Read(nil)
	require.ErrorIs(t, err, ErrNoMetadata)
}

// Package capture persists raw market data feed bytes to segment
// files and replays them with recorded pacing. Each record is one
// feed batch: a fixed header, the raw wire bytes, and a CRC32-C
// checksum.
package capture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"

	"main/internal/schema"
)

const (
	recordVersion      uint16 = 1
	recordHeaderSize          = 32
	recordChecksumSize        = 4
)

var (
	recordMagic = [4]byte{'F', 'C', 'A', 'P'}
	crcTable    = crc32.MakeTable(crc32.Castagnoli)
)

var (
	ErrInvalidMagic            = errors.New("capture invalid magic")
	ErrUnsupportedRecordVer    = errors.New("capture unsupported record version")
	ErrInvalidRecordHeaderSize = errors.New("capture invalid header size")
)

// RecordMeta describes one captured batch.
type RecordMeta struct {
	Seq       uint64
	Timestamp schema.Timestamp
	Flags     uint16
}

func encodeHeader(dst []byte, meta RecordMeta, payloadLen int) {
	_ = dst[recordHeaderSize-1]
	copy(dst[0:4], recordMagic[:])
	binary.LittleEndian.PutUint16(dst[4:6], recordVersion)
	binary.LittleEndian.PutUint16(dst[6:8], uint16(recordHeaderSize))
	binary.LittleEndian.PutUint16(dst[8:10], meta.Flags)
	binary.LittleEndian.PutUint16(dst[10:12], 0)
	binary.LittleEndian.PutUint32(dst[12:16], uint32(payloadLen))
	binary.LittleEndian.PutUint64(dst[16:24], meta.Seq)
	binary.LittleEndian.PutUint64(dst[24:32], uint64(meta.Timestamp))
}

func checksum(header, payload []byte) uint32 {
	crc := crc32.Update(0, crcTable, header)
	return crc32.Update(crc, crcTable, payload)
}

func decodeRecordHeader(src []byte) (RecordMeta, uint32, error) {
	if len(src) < recordHeaderSize {
		return RecordMeta{}, 0, ErrInvalidRecordHeaderSize
	}
	if !bytes.Equal(src[0:4], recordMagic[:]) {
		return RecordMeta{}, 0, ErrInvalidMagic
	}
	if ver := binary.LittleEndian.Uint16(src[4:6]); ver != recordVersion {
		return RecordMeta{}, 0, ErrUnsupportedRecordVer
	}
	if headerSize := binary.LittleEndian.Uint16(src[6:8]); headerSize != recordHeaderSize {
		return RecordMeta{}, 0, ErrInvalidRecordHeaderSize
	}
	meta := RecordMeta{
		Flags:     binary.LittleEndian.Uint16(src[8:10]),
		Seq:       binary.LittleEndian.Uint64(src[16:24]),
		Timestamp: schema.Timestamp(binary.LittleEndian.Uint64(src[24:32])),
	}
	payloadLen := binary.LittleEndian.Uint32(src[12:16])
	return meta, payloadLen, nil
}

package llm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

const (
	defaultSampleRate = 24000
	pcmBitsPerSample  = 16
	pcmChannels       = 1
)

// ToWAV wraps raw 16-bit PCM audio ("audio/L16" or "audio/pcm") into a WAV
// container. Assets already in a container format are returned unchanged.
func ToWAV(a Asset) (Asset, error) {
	mt, params, _ := strings.Cut(a.MIMEType, ";")
	mt = strings.ToLower(strings.TrimSpace(mt))
	if mt != "audio/l16" && mt != "audio/pcm" {
		return a, nil
	}

	rate := defaultSampleRate
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || strings.ToLower(k) != "rate" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Asset{}, fmt.Errorf("bad sample rate %q", v)
		}
		rate = n
	}
	return Asset{MIMEType: "audio/wav", Data: pcmToWAV(a.Data, rate)}, nil
}

func pcmToWAV(pcm []byte, sampleRate int) []byte {
	blockAlign := pcmChannels * pcmBitsPerSample / 8
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(pcmChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(pcmBitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

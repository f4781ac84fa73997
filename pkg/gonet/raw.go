package gonet

import "fmt"

// UnpackSamples reconstructs 12-bit samples from a packed byte buffer.
//
// The sensor stores two samples in every 3-byte group (b0, b1, b2):
//
//	even = b0<<4 | b2&0x0F
//	odd  = b1<<4 | b2>>4
//
// Samples come back interleaved (even, odd, even, odd, ...) in the raster
// scan order of the file, 2*len(buf)/3 of them. The buffer length must be
// divisible by 3.
func UnpackSamples(buf []byte) ([]uint16, error) {
	if len(buf)%3 != 0 {
		return nil, fmt.Errorf("%w: packed buffer of %d bytes is not divisible into 3-byte groups", ErrFormat, len(buf))
	}
	groups := len(buf) / 3
	samples := make([]uint16, 2*groups)
	for i := 0; i < groups; i++ {
		b0 := uint16(buf[3*i])
		b1 := uint16(buf[3*i+1])
		b2 := uint16(buf[3*i+2])
		samples[2*i] = b0<<4 | b2&0x0F
		samples[2*i+1] = b1<<4 | b2>>4
	}
	return samples, nil
}

// PackSamples is the exact inverse of UnpackSamples. It exists for
// synthesizing raw containers (fixtures, simulators); the camera itself
// only ever produces packed data. The sample count must be even and every
// sample must fit in 12 bits.
func PackSamples(samples []uint16) ([]byte, error) {
	if len(samples)%2 != 0 {
		return nil, fmt.Errorf("%w: cannot pack %d samples into 2-sample groups", ErrFormat, len(samples))
	}
	buf := make([]byte, len(samples)/2*3)
	for i := 0; i < len(samples); i += 2 {
		even, odd := samples[i], samples[i+1]
		if even > 4095 || odd > 4095 {
			return nil, fmt.Errorf("%w: sample pair (%d, %d) exceeds 12 bits", ErrFormat, even, odd)
		}
		buf[i/2*3] = byte(even >> 4)
		buf[i/2*3+1] = byte(odd >> 4)
		buf[i/2*3+2] = byte(odd&0x0F)<<4 | byte(even&0x0F)
	}
	return buf, nil
}

package mp4container

var startCode = []byte{0, 0, 0, 1}

// annexBParamSets joins parameter set groups into one start-code prefixed blob.
func annexBParamSets(groups ...[][]byte) []byte {
	var out []byte
	for _, group := range groups {
		for _, nalu := range group {
			out = append(out, startCode...)
			out = append(out, nalu...)
		}
	}
	return out
}

// lengthPrefixedToAnnexB rewrites 4-byte length-prefixed NAL units into dst
// with start codes. A truncated trailing unit is dropped.
func lengthPrefixedToAnnexB(dst, data []byte) []byte {
	offset := 0
	for offset+4 <= len(data) {
		n := int(data[offset])<<24 | int(data[offset+1])<<16 |
			int(data[offset+2])<<8 | int(data[offset+3])
		offset += 4
		if n < 0 || offset+n > len(data) {
			break
		}
		dst = append(dst, startCode...)
		dst = append(dst, data[offset:offset+n]...)
		offset += n
	}
	return dst
}

package pixconv

import "github.com/user/framesampler/pkg/ports"

// scaleContext holds the lookup tables for one geometry.
type scaleContext struct {
	key    contextKey
	src    sourceFormat
	dstBpp int

	// chroma column and row of each output pixel
	cx []int
	cy []int

	// fixed point (x256) contributions of each 8-bit sample
	yTab [256]int32
	rV   [256]int32
	gU   [256]int32
	gV   [256]int32
	bU   [256]int32
}

func newScaleContext(key contextKey, src sourceFormat, dstBpp int) *scaleContext {
	s := &scaleContext{key: key, src: src, dstBpp: dstBpp}

	s.cx = make([]int, key.srcW)
	for x := range s.cx {
		if src.kind == kindSemiPlanar {
			s.cx[x] = (x >> 1) * 2
		} else {
			s.cx[x] = x >> src.shiftX
		}
	}
	s.cy = make([]int, key.srcH)
	for y := range s.cy {
		s.cy[y] = y >> src.shiftY
	}

	for i := 0; i < 256; i++ {
		v := int32(i)
		if src.fullRange {
			s.yTab[i] = v<<8 + 128
			s.rV[i] = 359 * (v - 128)
			s.gU[i] = 88 * (v - 128)
			s.gV[i] = 183 * (v - 128)
			s.bU[i] = 454 * (v - 128)
		} else {
			s.yTab[i] = 298*(v-16) + 128
			s.rV[i] = 409 * (v - 128)
			s.gU[i] = 100 * (v - 128)
			s.gV[i] = 208 * (v - 128)
			s.bU[i] = 516 * (v - 128)
		}
	}
	return s
}

func (s *scaleContext) convert(frame *ports.Frame, dst *ports.RGBImage) {
	switch s.src.kind {
	case kindPlanar:
		s.convertPlanar(frame, dst)
	case kindSemiPlanar:
		s.convertSemiPlanar(frame, dst)
	case kindGray:
		s.convertGray(frame, dst)
	case kindPacked:
		s.convertPacked(frame, dst)
	}
}

func (s *scaleContext) put(dst []byte, i int, yy, u, v uint8) {
	c := s.yTab[yy]
	dst[i] = clamp((c + s.rV[v]) >> 8)
	dst[i+1] = clamp((c - s.gU[u] - s.gV[v]) >> 8)
	dst[i+2] = clamp((c + s.bU[u]) >> 8)
	if s.dstBpp == 4 {
		dst[i+3] = 0xff
	}
}

func (s *scaleContext) convertPlanar(frame *ports.Frame, dst *ports.RGBImage) {
	yp, up, vp := frame.Planes[0], frame.Planes[1], frame.Planes[2]
	ys, us, vs := frame.Strides[0], frame.Strides[1], frame.Strides[2]
	for y := 0; y < dst.Height; y++ {
		yRow := yp[y*ys:]
		uRow := up[s.cy[y]*us:]
		vRow := vp[s.cy[y]*vs:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < dst.Width; x++ {
			cx := s.cx[x]
			s.put(out, x*s.dstBpp, yRow[x], uRow[cx], vRow[cx])
		}
	}
}

func (s *scaleContext) convertSemiPlanar(frame *ports.Frame, dst *ports.RGBImage) {
	yp, uvp := frame.Planes[0], frame.Planes[1]
	ys, uvs := frame.Strides[0], frame.Strides[1]
	ui, vi := 0, 1
	if s.src.swapUV {
		ui, vi = 1, 0
	}
	for y := 0; y < dst.Height; y++ {
		yRow := yp[y*ys:]
		uvRow := uvp[s.cy[y]*uvs:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < dst.Width; x++ {
			cx := s.cx[x]
			s.put(out, x*s.dstBpp, yRow[x], uvRow[cx+ui], uvRow[cx+vi])
		}
	}
}

func (s *scaleContext) convertGray(frame *ports.Frame, dst *ports.RGBImage) {
	p, stride := frame.Planes[0], frame.Strides[0]
	for y := 0; y < dst.Height; y++ {
		row := p[y*stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < dst.Width; x++ {
			i := x * s.dstBpp
			out[i], out[i+1], out[i+2] = row[x], row[x], row[x]
			if s.dstBpp == 4 {
				out[i+3] = 0xff
			}
		}
	}
}

func (s *scaleContext) convertPacked(frame *ports.Frame, dst *ports.RGBImage) {
	p, stride := frame.Planes[0], frame.Strides[0]
	o, bpp := s.src.order, s.src.bpp
	for y := 0; y < dst.Height; y++ {
		row := p[y*stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < dst.Width; x++ {
			si, di := x*bpp, x*s.dstBpp
			out[di] = row[si+o[0]]
			out[di+1] = row[si+o[1]]
			out[di+2] = row[si+o[2]]
			if s.dstBpp == 4 {
				if bpp == 4 {
					out[di+3] = row[si+3]
				} else {
					out[di+3] = 0xff
				}
			}
		}
	}
}

func clamp(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

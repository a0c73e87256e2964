package stego

import "math"

const blockSize = 8

func dct1d(in [blockSize]float64) [blockSize]float64 {
	var out [blockSize]float64
	c1 := math.Pi / (2.0 * blockSize)
	for u := 0; u < blockSize; u++ {
		sum := 0.0
		for x := 0; x < blockSize; x++ {
			sum += in[x] * math.Cos(float64(2*x+1)*float64(u)*c1)
		}
		alpha := 1.0
		if u == 0 {
			alpha = 1.0 / math.Sqrt2
		}
		out[u] = 0.5 * alpha * sum
	}
	return out
}

func idct1d(in [blockSize]float64) [blockSize]float64 {
	var out [blockSize]float64
	c1 := math.Pi / (2.0 * blockSize)
	for x := 0; x < blockSize; x++ {
		sum := 0.0
		for u := 0; u < blockSize; u++ {
			alpha := 1.0
			if u == 0 {
				alpha = 1.0 / math.Sqrt2
			}
			sum += alpha * in[u] * math.Cos(float64(2*x+1)*float64(u)*c1)
		}
		out[x] = 0.5 * sum
	}
	return out
}

func dct2d(block [blockSize][blockSize]float64) [blockSize][blockSize]float64 {
	var temp [blockSize][blockSize]float64
	for i := 0; i < blockSize; i++ {
		temp[i] = dct1d(block[i])
	}
	var out [blockSize][blockSize]float64
	for j := 0; j < blockSize; j++ {
		var col [blockSize]float64
		for i := 0; i < blockSize; i++ {
			col[i] = temp[i][j]
		}
		res := dct1d(col)
		for i := 0; i < blockSize; i++ {
			out[i][j] = res[i]
		}
	}
	return out
}

func idct2d(dct [blockSize][blockSize]float64) [blockSize][blockSize]float64 {
	var temp [blockSize][blockSize]float64
	for i := 0; i < blockSize; i++ {
		temp[i] = idct1d(dct[i])
	}
	var out [blockSize][blockSize]float64
	for j := 0; j < blockSize; j++ {
		var col [blockSize]float64
		for i := 0; i < blockSize; i++ {
			col[i] = temp[i][j]
		}
		res := idct1d(col)
		for i := 0; i < blockSize; i++ {
			out[i][j] = res[i]
		}
	}
	return out
}

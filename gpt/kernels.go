package gpt

import "math"

// Compute kernels over flat float32 slices. Shapes are row-major with the
// last dimension contiguous; all loops follow the canonical order so the
// inner summations are sequential. The matmul, attention and softmax
// kernels fan their outer (batch, time[, head]) loops out via parallelFor;
// every worker writes a disjoint output row.

// encoderForward writes out[i,j,:] = wte[in[i,j],:] + wpe[j,:].
// Input ids must lie in [0, vocab); callers only supply sampler output or
// the EOT sentinel.
func encoderForward(out []float32, in []int32, wte, wpe []float32, b, t, c int) {
	for i := 0; i < b; i++ {
		for j := 0; j < t; j++ {
			o := out[i*t*c+j*c:]
			ix := int(in[i*t+j])
			wteIx := wte[ix*c:]
			wpeT := wpe[j*c:]
			for k := 0; k < c; k++ {
				o[k] = wteIx[k] + wpeT[k]
			}
		}
	}
}

// layernormForward normalizes each position of inp over the channel axis,
// scales by weight and shifts by bias. The per-position mean and
// reciprocal standard deviation are persisted into mean and rstd; inference
// never reads them back, but the arena layout reserves them.
func layernormForward(out, mean, rstd, inp, weight, bias []float32, b, t, c int) {
	const eps = 1e-5
	for i := 0; i < b; i++ {
		for j := 0; j < t; j++ {
			x := inp[i*t*c+j*c : i*t*c+j*c+c]

			m := float32(0)
			for k := 0; k < c; k++ {
				m += x[k]
			}
			m /= float32(c)

			v := float32(0)
			for k := 0; k < c; k++ {
				xshift := x[k] - m
				v += xshift * xshift
			}
			v /= float32(c)

			s := float32(1) / float32(math.Sqrt(float64(v+eps)))

			o := out[i*t*c+j*c:]
			for k := 0; k < c; k++ {
				n := s * (x[k] - m)
				o[k] = n*weight[k] + bias[k]
			}
			mean[i*t+j] = m
			rstd[i*t+j] = s
		}
	}
}

// matmulForward computes out[i,j,k] = bias[k] + sum_m inp[i,j,m]*weight[k,m]
// with weight row-major [oc, c]. Parallel over (batch, time) rows.
func matmulForward(out, inp, weight, bias []float32, b, t, c, oc int) {
	parallelFor(b*t, func(row int) {
		i, j := row/t, row%t
		outBT := out[i*t*oc+j*oc:]
		inpBT := inp[i*t*c+j*c : i*t*c+j*c+c]
		for k := 0; k < oc; k++ {
			val := bias[k]
			wrow := weight[k*c : k*c+c]
			for m := 0; m < c; m++ {
				val += inpBT[m] * wrow[m]
			}
			outBT[k] = val
		}
	})
}

// matmulForwardNoBias is matmulForward with the bias term omitted; used for
// the unembedding projection, which reuses wte as a [vocab, c] matrix.
func matmulForwardNoBias(out, inp, weight []float32, b, t, c, oc int) {
	parallelFor(b*t, func(row int) {
		i, j := row/t, row%t
		outBT := out[i*t*oc+j*oc:]
		inpBT := inp[i*t*c+j*c : i*t*c+j*c+c]
		for k := 0; k < oc; k++ {
			val := float32(0)
			wrow := weight[k*c : k*c+c]
			for m := 0; m < c; m++ {
				val += inpBT[m] * wrow[m]
			}
			outBT[k] = val
		}
	})
}

// attentionForward computes causal multi-head self-attention. inp is the
// fused qkv activation [t, 3c] with queries, keys and values laid out back
// to back per position. preatt holds the scaled raw scores, att the
// normalized weights with positions past the query zeroed (the causal
// mask). Parallel over (batch, time, head).
func attentionForward(out, preatt, att, inp []float32, b, t, c, nh int) {
	c3 := 3 * c
	hs := c / nh
	scale := float32(1) / float32(math.Sqrt(float64(hs)))

	parallelFor(b*t*nh, func(tile int) {
		i := tile / (t * nh)
		j := (tile / nh) % t
		k := tile % nh

		query := inp[i*t*c3+j*c3+k*hs:]
		preattBTH := preatt[i*nh*t*t+k*t*t+j*t:]
		attBTH := att[i*nh*t*t+k*t*t+j*t:]

		// raw scores against keys m <= j, tracking the row max
		maxval := float32(-10000.0)
		for m := 0; m <= j; m++ {
			key := inp[i*t*c3+m*c3+k*hs+c:]
			val := float32(0)
			for n := 0; n < hs; n++ {
				val += query[n] * key[n]
			}
			val *= scale
			if val > maxval {
				maxval = val
			}
			preattBTH[m] = val
		}

		// stable softmax over the unmasked prefix
		expsum := float32(0)
		for m := 0; m <= j; m++ {
			expv := float32(math.Exp(float64(preattBTH[m] - maxval)))
			expsum += expv
			attBTH[m] = expv
		}
		expsumInv := float32(0)
		if expsum != 0 {
			expsumInv = 1 / expsum
		}
		for m := 0; m < t; m++ {
			if m <= j {
				attBTH[m] *= expsumInv
			} else {
				attBTH[m] = 0
			}
		}

		// weighted sum of values
		outBTH := out[i*t*c+j*c+k*hs : i*t*c+j*c+k*hs+hs]
		for n := 0; n < hs; n++ {
			outBTH[n] = 0
		}
		for m := 0; m <= j; m++ {
			value := inp[i*t*c3+m*c3+k*hs+2*c:]
			a := attBTH[m]
			for n := 0; n < hs; n++ {
				outBTH[n] += a * value[n]
			}
		}
	})
}

// geluForward applies the tanh-approximation GELU element-wise.
func geluForward(out, inp []float32) {
	s := float32(math.Sqrt(2.0 / math.Pi))
	for i, x := range inp {
		cube := 0.044715 * x * x * x
		out[i] = 0.5 * x * (1 + float32(math.Tanh(float64(s*(x+cube)))))
	}
}

// residualForward writes out = a + b element-wise.
func residualForward(out, a, b []float32) {
	for i := range out {
		out[i] = a[i] + b[i]
	}
}

// softmaxForward turns each position's logit row into a probability
// distribution over the vocabulary. Parallel over (batch, time) rows.
func softmaxForward(probs, logits []float32, b, t, v int) {
	parallelFor(b*t, func(row int) {
		i, j := row/t, row%t
		logitsBT := logits[i*t*v+j*v : i*t*v+j*v+v]
		probsBT := probs[i*t*v+j*v:]
		maxval := float32(-10000.0)
		for k := 0; k < v; k++ {
			if logitsBT[k] > maxval {
				maxval = logitsBT[k]
			}
		}
		sum := float32(0)
		for k := 0; k < v; k++ {
			probsBT[k] = float32(math.Exp(float64(logitsBT[k] - maxval)))
			sum += probsBT[k]
		}
		for k := 0; k < v; k++ {
			probsBT[k] /= sum
		}
	})
}

// Package gpt implements a CPU-only inference engine for GPT-2 family
// checkpoints stored flat: a 1024-byte header of 256 little-endian int32
// words followed by sixteen float32 parameter tensors in a fixed order.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - model.go: Model lifecycle (load -> init -> forward -> sample) and the
//     layer-by-layer forward pass
//   - kernels.go: the compute kernels the forward pass is composed of
//   - generate.go: the generation loop that pumps tokens out of the model
//
// # Architecture
//
// The engine owns two arenas: one for the sixteen parameter tensors read
// from the model file, one for the twenty-three activation tensors sized at
// Init time. Tensors are (offset, length) views into their arena; there is
// no per-tensor allocation. See tensor.go for the role tables.
//
// Supporting types:
//   - TokenBuffer (context.go): sliding context window with an end-of-text
//     sentinel, fed back by the generation loop
//   - RNG (rng.go): the xorshift* stream the sampler draws coins from
//   - Vocab (vocab.go): optional token-id -> byte-string decoder table
//
// Orchestration is single-threaded; the matmul, attention and softmax
// kernels fan out over disjoint output rows (parallel.go).
package gpt

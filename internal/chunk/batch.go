package chunk

// DefaultBatchSize is used when Batch is called with a non-positive size.
const DefaultBatchSize = 32

// Batch groups chunks into batches of at most size chunks, for a
// single Embedder.embed_batch call per batch (spec §4.5).
func Batch(chunks []*Chunk, size int) [][]*Chunk {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if len(chunks) == 0 {
		return nil
	}
	batches := make([][]*Chunk, 0, (len(chunks)+size-1)/size)
	for i := 0; i < len(chunks); i += size {
		end := i + size
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, chunks[i:end])
	}
	return batches
}

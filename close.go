package kdgo

// Close releases the memory reserved with the resource controller.
// Further queries return ErrClosed. Close is idempotent.
func (ix *Index[T]) Close() error {
	if ix == nil || !ix.closed.CompareAndSwap(false, true) {
		return nil
	}
	ix.opts.resources.ReleaseMemory(ix.reserved.Swap(0))
	return nil
}

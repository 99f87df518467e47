// package swapbuf provides a double buffer that readers never block on.
//
// Consider the case where you have some configuration that is rebuilt by a single
// goroutine and read on every request. A tempting lock-free way to implement
// this is to keep two copies and flip an index:
//
//	var (
//		copies [2]Config
//		refs   [2]int32
//		index  int32
//	)
//
//	func Read() (*Config, func()) {
//		i := atomic.LoadInt32(&index)
//		atomic.AddInt32(&refs[i], 1)
//		return &copies[i], func() { atomic.AddInt32(&refs[i], -1) }
//	}
//
//	func Rebuild(fn func(*Config)) {
//		i := atomic.LoadInt32(&index)
//		fn(&copies[1-i])
//		atomic.StoreInt32(&index, 1-i)
//		for atomic.LoadInt32(&refs[i]) != 0 {
//			runtime.Gosched()
//		}
//		fn(&copies[i])
//	}
//
// This solution is broken: between loading the index and incrementing the
// reference count, the writer can flip the index, find no references on the old
// copy and start modifying it. The reader then holds a copy that is being
// written to. Using the Buffer in this package the window is closed by
// validating the claimed copy after the reference is taken:
//
//	var config swapbuf.Buffer[Config]
//
//	func Handle() {
//		ref := config.Read()
//		defer ref.Release()
//		use(ref.Value())
//	}
//
//	func Rebuild(fn func(*Config)) {
//		config.Modify(fn)
//	}
//
// The Read and Release calls are a handful of atomic operations on a counter
// that lives on its own cache line. The Modify call is expected to be much less
// frequent. It publishes the freshly modified copy right away, so future Reads
// are never held up, and then spins until every Ref to the old copy is Released.
// A Ref that is never Released therefore stalls the writer forever. Use
// ModifyContext to bound the wait.
package swapbuf

package vfs

import "runtime"

func numCPU() int {
	return runtime.NumCPU()
}

package config

import "fmt"

// fargateMemory lists the memory range and step (MiB) Fargate supports for each CPU size (CPU units).
var fargateMemory = map[int]struct{ min, max, step int }{
	256:   {1024, 2048, 1024},
	512:   {1024, 4096, 1024},
	1024:  {2048, 8192, 1024},
	2048:  {4096, 16384, 1024},
	4096:  {8192, 30720, 1024},
	8192:  {16384, 61440, 4096},
	16384: {32768, 122880, 8192},
}

// ValidateFargateSize checks the CPU and memory are a combination Fargate can run.
func ValidateFargateSize(cpu, memory int) error {
	r, ok := fargateMemory[cpu]
	if !ok {
		return fmt.Errorf("unsupported fargate cpu %d", cpu)
	}
	if cpu == 256 && memory == 512 {
		return nil
	}
	if memory < r.min || memory > r.max || (memory-r.min)%r.step != 0 {
		return fmt.Errorf("fargate cpu %d supports memory from %d to %d in steps of %d, got %d", cpu, r.min, r.max, r.step, memory)
	}
	return nil
}

// Package enginetest provides a compliance suite for statengine.Engine
// implementations.
//
// Engine authors point the suite at a factory producing ready-to-use
// engines backed by a working interpreter and get the behavioral
// contract checked as subtests:
//
//	func TestCompliance(t *testing.T) {
//		enginetest.Run(t, enginetest.Config{
//			New: func(t *testing.T) statengine.Engine {
//				return newReadyEngine(t)
//			},
//			HangScript: "import time; time.sleep(3600)",
//		})
//	}
//
// Optional capabilities (statengine.Prober) are discovered via type
// assertion, mirroring how the convenience helpers resolve them.
package enginetest

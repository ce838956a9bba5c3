// Package mocks provides test doubles for ports interfaces.
//
// These mocks are designed to be simple, thread-safe, in-memory implementations
// suitable for unit testing. Each mock provides:
//
//   - Default behavior that returns reasonable test values
//   - Callback functions (xxxFn) for customizing behavior per test
//   - Helper methods for inspecting recorded calls
//
// # Usage Example
//
//	func TestPipeline(t *testing.T) {
//		extractor := &mocks.Extractor{}
//		extractor.ProbeFn = func(ctx context.Context, url string, p policy.RetrievalPolicy) (*ports.Metadata, error) {
//			return &ports.Metadata{EstimatedSize: 1 << 30}, nil
//		}
//
//		// ... run the pipeline, then assert extractor.FetchCalls() == 0
//	}
//
// # Available Mocks
//
//   - Extractor: implements ports.Extractor
//   - Renderer: implements ports.Renderer
//   - Messenger: implements ports.Messenger and records every call
//   - ProcessedMessageSet: implements ports.ProcessedMessageSet
//   - AcquisitionLog: implements ports.AcquisitionLog
package mocks

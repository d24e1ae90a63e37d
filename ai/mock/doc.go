// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChatModel,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run
// without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	chat := mock.NewMockChatModel()
//	chat.GenerateTextFunc = func(ctx context.Context, req ai.TextRequest) (string, error) {
//	    return "[1,90,2,40]", nil
//	}
//
//	// Assert on backend ordering
//	models := chat.ModelsCalled()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockChatModel: Returns "50" and records every request
//   - MockProvider: Aggregates mock embedder and chat model
package mock

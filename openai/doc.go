// Copyright (c) Microsoft. All rights reserved.

// Package openai provides a [swarm.ChatClient] implementation for the OpenAI
// Chat Completions API.
//
// Create a client and drive agents with it through a [swarm.Runner]:
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o"),
//	)
//
//	runner := swarm.NewRunner(client)
//
// The client supports both synchronous and streaming responses,
// tool/function calling, and all standard ChatOptions. Entries in
// ChatOptions.Extra are forwarded as top-level request fields.
//
// # Configuration
//
// Use functional options to configure the client:
//
//   - [WithModel]: set the default model
//   - [WithBaseURL]: override the API endpoint (proxies, compatible servers)
//   - [WithAPIVersion]: append an api-version query parameter (Azure)
//   - [WithOrganization]: set the OpenAI organization header
//   - [WithHTTPClient]: provide a custom http.Client
//   - [WithHeaders]: add custom headers to every request
//
// For Azure OpenAI deployments, [NewAzure] wires the endpoint, api-key
// header, and api-version in one call; [WithAzureCredential] switches it to
// Entra ID token authentication.
//
// # Testing
//
// The client uses an unexported transport interface internally.
// For testing, provide a mock http.Client via [WithHTTPClient]
// with a custom RoundTripper.
package openai

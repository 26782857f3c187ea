// Package biz implements the business logic: credential handling, blog
// publishing with LLM content moderation, knowledge indexing and retrieval,
// and the conversational assistant.
//
// Services receive their dependencies (stores, LLM providers, worker pool)
// through constructors so tests can substitute fakes.
package biz

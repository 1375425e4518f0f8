package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - User from user.go
// - InterviewSession, QuestionAnswer, SentimentAnalysis from interview.go
// - Exchange from exchange.go
// - Evaluation, QuestionScore from evaluation.go
// - InterviewSchedule from schedule.go

// Database schema overview:
// 1. users - Accounts and the interview readiness profile metric
// 2. interview_sessions - One row per interview attempt; the Q&A list is embedded as JSONB
// 3. interview_exchanges - Flat question/answer log used to rebuild live transcripts
// 4. interview_evaluations - Final verdict, one per session, kept independently of the session
// 5. interview_schedules - Scheduled live interviews linked to the session they started

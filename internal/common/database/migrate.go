package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RunMigrations applies the schema. Statements are idempotent so the
// server can run them on every boot.
func RunMigrations(db *sqlx.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id BIGSERIAL PRIMARY KEY,
        email VARCHAR(255) UNIQUE,
        username VARCHAR(30) NOT NULL UNIQUE,
        password_hash VARCHAR(255),
        phone VARCHAR(20) UNIQUE,
        is_verified BOOLEAN NOT NULL DEFAULT FALSE,
        is_profile_complete BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,

	`CREATE TABLE IF NOT EXISTS sessions (
        id BIGSERIAL PRIMARY KEY,
        user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        token TEXT NOT NULL,
        refresh_token TEXT NOT NULL,
        device_info TEXT,
        ip_address VARCHAR(45),
        expires_at TIMESTAMPTZ NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_token ON sessions(token)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_refresh ON sessions(refresh_token)`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
        user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
        display_name VARCHAR(100),
        bio TEXT,
        birth_date DATE,
        gender VARCHAR(20),
        interests TEXT[] NOT NULL DEFAULT '{}',
        city VARCHAR(100),
        country VARCHAR(100),
        latitude DOUBLE PRECISION,
        longitude DOUBLE PRECISION,
        avatar_url TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,

	// One swipe per actor/target pair. The unique constraint is what
	// makes swipe recording idempotent under concurrency.
	`CREATE TABLE IF NOT EXISTS swipe_actions (
        id BIGSERIAL PRIMARY KEY,
        actor_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        target_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        action_type VARCHAR(10) NOT NULL,
        is_mutual BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT swipe_actions_pair_unique UNIQUE (actor_id, target_id),
        CONSTRAINT swipe_actions_no_self CHECK (actor_id != target_id)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_swipes_target ON swipe_actions(target_id)`,

	// The expression index canonicalizes the pair so two concurrent
	// mutual-match inserts can only produce one connection.
	`CREATE TABLE IF NOT EXISTS connections (
        id BIGSERIAL PRIMARY KEY,
        requester_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        receiver_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        connection_type VARCHAR(20) NOT NULL DEFAULT 'DATING',
        status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
        match_score DOUBLE PRECISION,
        matched_interests TEXT[] NOT NULL DEFAULT '{}',
        match_source VARCHAR(20),
        requested_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
        responded_at TIMESTAMPTZ,
        CONSTRAINT connections_no_self CHECK (requester_id != receiver_id)
    )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_connections_pair
        ON connections ((LEAST(requester_id, receiver_id)), (GREATEST(requester_id, receiver_id)))`,

	`CREATE TABLE IF NOT EXISTS date_plans (
        id BIGSERIAL PRIMARY KEY,
        owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        partner_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
        title VARCHAR(255) NOT NULL,
        description TEXT,
        place_type VARCHAR(30) NOT NULL DEFAULT 'OTHER',
        place_name VARCHAR(255),
        place_address TEXT,
        latitude DOUBLE PRECISION,
        longitude DOUBLE PRECISION,
        scheduled_at TIMESTAMPTZ NOT NULL,
        duration_minutes INT NOT NULL DEFAULT 120,
        is_public BOOLEAN NOT NULL DEFAULT TRUE,
        status VARCHAR(20) NOT NULL DEFAULT 'OPEN',
        connection_type VARCHAR(20) NOT NULL DEFAULT 'DATING',
        max_proposals INT NOT NULL DEFAULT 10,
        proposal_count INT NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
	`CREATE INDEX IF NOT EXISTS idx_date_plans_public
        ON date_plans(is_public, status, scheduled_at)`,

	`CREATE TABLE IF NOT EXISTS date_proposals (
        id BIGSERIAL PRIMARY KEY,
        date_plan_id BIGINT NOT NULL REFERENCES date_plans(id) ON DELETE CASCADE,
        proposer_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        message TEXT,
        proposed_time TIMESTAMPTZ,
        status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
        created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT date_proposals_once UNIQUE (date_plan_id, proposer_id)
    )`,

	`CREATE TABLE IF NOT EXISTS meetups (
        id BIGSERIAL PRIMARY KEY,
        organizer_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        title VARCHAR(255) NOT NULL,
        description TEXT,
        category VARCHAR(100) NOT NULL,
        location_name VARCHAR(255),
        latitude DOUBLE PRECISION,
        longitude DOUBLE PRECISION,
        scheduled_at TIMESTAMPTZ NOT NULL,
        max_participants INT NOT NULL,
        participant_count INT NOT NULL DEFAULT 0,
        status VARCHAR(20) NOT NULL DEFAULT 'OPEN',
        created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
	`CREATE INDEX IF NOT EXISTS idx_meetups_category ON meetups(category, status)`,

	`CREATE TABLE IF NOT EXISTS meetup_participants (
        id BIGSERIAL PRIMARY KEY,
        meetup_id BIGINT NOT NULL REFERENCES meetups(id) ON DELETE CASCADE,
        user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        joined_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT meetup_participants_once UNIQUE (meetup_id, user_id)
    )`,

	`CREATE TABLE IF NOT EXISTS stories (
        id BIGSERIAL PRIMARY KEY,
        user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        media_url TEXT NOT NULL,
        media_type VARCHAR(10) NOT NULL DEFAULT 'image',
        caption TEXT,
        view_count INT NOT NULL DEFAULT 0,
        expires_at TIMESTAMPTZ NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
	`CREATE INDEX IF NOT EXISTS idx_stories_expiry ON stories(expires_at)`,

	`CREATE TABLE IF NOT EXISTS story_views (
        id BIGSERIAL PRIMARY KEY,
        story_id BIGINT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
        viewer_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        viewed_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT story_views_once UNIQUE (story_id, viewer_id)
    )`,

	`CREATE TABLE IF NOT EXISTS notifications (
        id BIGSERIAL PRIMARY KEY,
        user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        kind VARCHAR(50) NOT NULL,
        reference_id BIGINT,
        message TEXT NOT NULL,
        is_read BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user
        ON notifications(user_id, is_read, created_at DESC)`,
}

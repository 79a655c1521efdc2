package store

const schema = `
CREATE TABLE IF NOT EXISTS user_profile (
    user_id    TEXT PRIMARY KEY,
    theme      TEXT NOT NULL,
    experience TEXT NOT NULL,
    region     TEXT NOT NULL
);
`

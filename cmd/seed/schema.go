package main

// schema is the full DDL for a fresh database. Statements are idempotent so
// `seed init` can run against an existing database without damage.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id              BIGSERIAL PRIMARY KEY,
	product_id      TEXT NOT NULL UNIQUE,
	name            TEXT NOT NULL,
	category        TEXT NOT NULL DEFAULT '',
	selling_price   DOUBLE PRECISION NOT NULL,
	cost_price      DOUBLE PRECISION NOT NULL,
	is_perishable   BOOLEAN NOT NULL DEFAULT FALSE,
	shelf_life_days INT NOT NULL DEFAULT 0,
	weight_kg       DOUBLE PRECISION NOT NULL DEFAULT 0,
	co2_factor      DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS inventory_batches (
	id            BIGSERIAL PRIMARY KEY,
	product_id    TEXT NOT NULL REFERENCES products(product_id),
	quantity      INT NOT NULL CHECK (quantity >= 0),
	received_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	expiry_date   TIMESTAMPTZ,
	current_price DOUBLE PRECISION NOT NULL,
	batch_id      TEXT NOT NULL UNIQUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_inventory_batches_product ON inventory_batches (product_id);

CREATE TABLE IF NOT EXISTS sales (
	id            BIGSERIAL PRIMARY KEY,
	product_id    TEXT NOT NULL,
	date          DATE NOT NULL,
	units_sold    INT NOT NULL,
	price_at_sale DOUBLE PRECISION NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (date);
CREATE INDEX IF NOT EXISTS idx_sales_product ON sales (product_id);

CREATE TABLE IF NOT EXISTS weather_observations (
	id               BIGSERIAL PRIMARY KEY,
	date             DATE NOT NULL UNIQUE,
	temperature_c    DOUBLE PRECISION NOT NULL,
	precipitation_mm DOUBLE PRECISION NOT NULL,
	weather_condition TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS forecasts (
	id              BIGSERIAL PRIMARY KEY,
	product_id      TEXT NOT NULL,
	date            DATE NOT NULL,
	predicted_units INT NOT NULL,
	model_version   TEXT NOT NULL DEFAULT 'v1.0',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (product_id, date)
);

CREATE TABLE IF NOT EXISTS alerts (
	id         BIGSERIAL PRIMARY KEY,
	product_id TEXT NOT NULL,
	date       DATE NOT NULL,
	type       TEXT NOT NULL CHECK (type IN ('understock', 'overstock')),
	action     TEXT NOT NULL CHECK (action IN ('reorder', 'reduce-price', 'hold')),
	details    JSONB NOT NULL DEFAULT '{}',
	status     TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'executed', 'ignored')),
	reasons    TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts (status);
CREATE INDEX IF NOT EXISTS idx_alerts_date ON alerts (date);
`

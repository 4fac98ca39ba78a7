// Package probes provides health.Probe implementations for common
// dependencies and a factory that builds them from configuration.
//
// Every probe reports its kind (see Kind), which observe attaches to
// spans, metrics and logs. Probes that hold connections implement
// io.Closer; the caller closes them on shutdown.
//
// Supported kinds:
//
//	http        url, method, expect_status, insecure_skip_verify
//	tcp         address
//	postgres    dsn
//	redis       url | address, password, db
//	kafka       brokers, topic
//	opensearch  addresses, username, password, min_status
//	memory      threshold, max_alloc_mb
//	static      healthy, detail
package probes

package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeAnalyzeArchitecture() string {
	return `Scores every application, topic, node and library of a publish-subscribe snapshot for structural smells.

USE WHEN:
- Reviewing a messaging architecture for coupling and concentration problems
- Finding the few components that deviate most from the rest of their system
- Explaining why a component looks risky in terms of concrete graph metrics

INTERPRETING RESULTS:
- Metrics are flagged up (at or above Q3) or down (at or below Q1) relative to entities of the same kind
- A pattern fires when its flag combination holds; a pattern hit by only one entity adds 1.0 to its score, one shared by n entities adds 1/n
- UNI adds at most tau per metric for values far above Q3; Score = OS^P + lambda * UNI
- Scores are relative to this snapshot; do not compare them across systems
- dropped lists edges whose endpoints are not declared; many dropped edges mean the snapshot is incomplete

METRICS RETURNED:
- Per entity: raw metrics with up/down flags, triggered patterns, OS^P, UNI, Score
- Per kind: Q1/Q3/min/max thresholds and pattern counts
- Topic categories derived from shared name prefixes
- Summary counts and the constants used`
}

func describeRankEntities() string {
	return `Ranks entities by outlier score, highest first, ties by id.

USE WHEN:
- You only need the most anomalous components, not the full metric tables
- Exporting (name, score) lists for comparison with an expert's ranking

INTERPRETING RESULTS:
- Score 0 means no pattern fired and no metric sits far above its population
- Scores of 1.0 or more mean at least one pattern fired for this entity alone
- Rankings are per kind; an application score is not comparable to a topic score

METRICS RETURNED:
- Per kind: ordered entries with id, name and score`
}

func describeBasicStats() string {
	return `Describes the size and shape of a snapshot without scoring it.

USE WHEN:
- Getting oriented in an unfamiliar system before analyzing it
- Checking which topics have the most publishers or subscribers
- Reviewing topic payload sizes and QoS settings

INTERPRETING RESULTS:
- Lists are sorted by count descending, ties by id
- Nodes with zero applications still appear in applications per node
- Edges to undeclared entities are not counted

METRICS RETURNED:
- Topics by size, publishers and subscribers
- Applications per node; topic usage per application
- Mean and standard deviation of topics per application
- Durability, reliability and transport priority value counts`
}

func describeDetectLoops() string {
	return `Finds message feedback loops between applications.

USE WHEN:
- Looking for echo bugs or message storms
- Auditing request/response traffic built on top of topics

INTERPRETING RESULTS:
- Self-subscription: an application consumes a topic it publishes
- Ping-pong: two applications each consume a topic the other publishes
- Feedback cluster: a group where every application reaches every other through topics
- Intentional request/response pairs also show up as ping-pong; judge by topic names

METRICS RETURNED:
- Sorted lists of self-subscriptions, ping-pong pairs and clusters`
}

func describePatterns() string {
	return `Lists every structural metric and pattern rule, optionally for one entity kind.

USE WHEN:
- A pattern code or metric code in another tool's output is unfamiliar
- Explaining to a user why a pattern fired

INTERPRETING RESULTS:
- Conditions use X_up and X_down for the relative flags of metric X
- Patterns are evaluated per entity; scoring depends on how many entities share a pattern

METRICS RETURNED:
- Metrics: kind, code, name, description
- Patterns: kind, code, name, condition, description`
}

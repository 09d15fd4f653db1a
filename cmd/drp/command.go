package main

import (
	"github.com/urfave/cli/v2"
)

const (
	flagConfig   = "config"
	flagStateDir = "state-dir"
	flagVerbose  = "verbose"
	flagLessons  = "lessons"
)

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "drp"
	app.Usage = "Decentralized Rights Protocol portal client"
	app.Flags = []cli.Flag{
		&cli.StringFlag{Name: flagConfig, Usage: "TOML config file", Value: "drp.toml", EnvVars: []string{"DRP_CONFIG"}},
		&cli.StringFlag{Name: flagStateDir, Usage: "directory of the client-local state"},
		&cli.StringFlag{Name: flagLessons, Usage: "root of the lesson content tree", Value: "lessons"},
		&cli.BoolFlag{Name: flagVerbose, Usage: "log at debug level"},
	}
	app.Commands = []*cli.Command{
		{
			Name:     "activity",
			Usage:    "Submit and verify activity proofs",
			Category: "Proof",
			Subcommands: []*cli.Command{
				{
					Action:    s.online(s.submitActivity),
					Name:      "submit",
					Usage:     "Pin the media, then submit the activity claim",
					ArgsUsage: "<media file>",
					Flags:     activityFlags(true),
					Description: `Pins the media file on IPFS, hashes it with keccak256 and submits the
activity on behalf of the connected wallet.`,
				},
				{
					Action:    s.online(s.verifyActivity),
					Name:      "verify",
					Usage:     "Upload the media and verify the activity",
					ArgsUsage: "<media file>",
					Flags:     activityFlags(false),
				},
				{
					Action:    s.online(s.preVerifyActivity),
					Name:      "precheck",
					Usage:     "Ask the AI elder for an advisory verdict",
					ArgsUsage: "<media cid>",
					Flags:     activityFlags(false),
				},
			},
		},
		{
			Name:     "status",
			Usage:    "Submit and verify status credentials",
			Category: "Proof",
			Subcommands: []*cli.Command{
				{
					Action:    s.online(s.submitStatus),
					Name:      "submit",
					Usage:     "Pin the credential, then submit the status claim",
					ArgsUsage: "<credential file>",
					Flags:     statusFlags(true),
				},
				{
					Action:    s.online(s.verifyStatus),
					Name:      "verify",
					Usage:     "Upload the credential and verify the status",
					ArgsUsage: "<credential file>",
					Flags:     statusFlags(false),
				},
				{
					Action:    s.online(s.preVerifyStatus),
					Name:      "precheck",
					Usage:     "Ask the AI elder for an advisory verdict",
					ArgsUsage: "<credential cid>",
					Flags:     statusFlags(false),
				},
				{
					Action:    s.online(s.statusProfile),
					Name:      "profile",
					Usage:     "Show the status profile of a user",
					ArgsUsage: "[user id]",
				},
			},
		},
		{
			Name:     "submission",
			Usage:    "Inspect submissions",
			Category: "Proof",
			Subcommands: []*cli.Command{
				{
					Action:    s.online(s.getSubmission),
					Name:      "get",
					Usage:     "Show a submission and its review state",
					ArgsUsage: "<submission id>",
				},
			},
		},
		{
			Action:   s.online(s.ledger),
			Name:     "ledger",
			Usage:    "List the submissions mirrored to the network ledger",
			Category: "Proof",
		},
		{
			Name:     "reward",
			Usage:    "Request, claim and inspect rewards",
			Category: "Reward",
			Subcommands: []*cli.Command{
				{
					Action:    s.online(s.requestReward),
					Name:      "request",
					Usage:     "Request the reward of a submission",
					ArgsUsage: "<submission id>",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "assessment", Usage: "AI assessment as a JSON object"},
					},
				},
				{
					Action: s.online(s.rewardSummary),
					Name:   "summary",
					Usage:  "Show the reward summary",
				},
				{
					Action: s.online(s.rewardHistory),
					Name:   "history",
					Usage:  "Show the reward history",
				},
				{
					Action: s.online(s.rewardOverview),
					Name:   "overview",
					Usage:  "Show the summary and history together",
				},
				{
					Action:    s.online(s.claimReward),
					Name:      "claim",
					Usage:     "Claim the rewards of a submission",
					ArgsUsage: "<submission id>",
				},
			},
		},
		{
			Action:   s.online(s.leaderboard),
			Name:     "leaderboard",
			Usage:    "Show the reward leaderboard",
			Category: "Reward",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "learn", Usage: "show the learning leaderboard instead"},
				&cli.IntFlag{Name: "limit", Value: 10},
			},
		},
		{
			Name:     "explorer",
			Usage:    "Browse network activity",
			Category: "Explorer",
			Subcommands: []*cli.Command{
				{
					Action: s.online(s.transactions),
					Name:   "transactions",
					Usage:  "List transactions",
					Flags: append(pageFlags(),
						&cli.StringFlag{Name: "type"},
						&cli.StringFlag{Name: "status"},
					),
				},
				{
					Action: s.online(s.feed),
					Name:   "feed",
					Usage:  "List the activity feed",
					Flags: append(pageFlags(),
						&cli.StringFlag{Name: "actor"},
					),
				},
				{
					Action:    s.online(s.aiSummary),
					Name:      "summary",
					Usage:     "Show the AI summary of an activity",
					ArgsUsage: "<activity id>",
				},
			},
		},
		{
			Name:     "elder",
			Usage:    "Talk to the AI elder",
			Category: "Explorer",
			Subcommands: []*cli.Command{
				{
					Action:    s.online(s.askElder),
					Name:      "ask",
					Usage:     "Ask the AI elder a question",
					ArgsUsage: "<prompt>",
				},
			},
		},
		{
			Name:     "lesson",
			Usage:    "Read and complete lessons",
			Category: "Learn",
			Subcommands: []*cli.Command{
				{
					Action:    s.offline(s.lessonQuestions),
					Name:      "questions",
					Usage:     "List the quiz questions of a lesson",
					ArgsUsage: "<lesson id>",
					Flags: []cli.Flag{
						&cli.BoolFlag{Name: "shuffle", Usage: "shuffle the options"},
						&cli.Int64Flag{Name: "seed", Usage: "seed of the shuffle; zero means random"},
					},
				},
				{
					Action:    s.offline(s.lessonSections),
					Name:      "sections",
					Usage:     "List the sections of a lesson",
					ArgsUsage: "<lesson id>",
				},
				{
					Action:    s.offline(s.lessonRender),
					Name:      "render",
					Usage:     "Print the lesson with its questions replaced by placeholders",
					ArgsUsage: "<lesson id>",
				},
				{
					Action:    s.offline(s.lessonSearch),
					Name:      "search",
					Usage:     "Search the lessons",
					ArgsUsage: "<query>",
					Flags: []cli.Flag{
						&cli.IntFlag{Name: "offset"},
						&cli.IntFlag{Name: "limit", Value: 10},
					},
				},
				{
					Action:    s.online(s.lessonFetch),
					Name:      "fetch",
					Usage:     "Fetch a lesson from the learning backend",
					ArgsUsage: "<lesson id>",
				},
				{
					Action:    s.online(s.withEngine(s.lessonComplete)),
					Name:      "complete",
					Usage:     "Report a completed lesson and award XP",
					ArgsUsage: "<lesson id>",
					Flags: []cli.Flag{
						&cli.IntFlag{Name: "score", Usage: "quiz score in percent; when set, the quiz XP is awarded too"},
					},
				},
			},
		},
		{
			Name:     "quiz",
			Usage:    "Practice lesson quizzes",
			Category: "Learn",
			Subcommands: []*cli.Command{
				{
					Action:    s.offline(s.quizShuffle),
					Name:      "shuffle",
					Usage:     "Shuffle the options of a quiz",
					ArgsUsage: "<lesson id>",
					Flags: []cli.Flag{
						&cli.Int64Flag{Name: "seed", Usage: "seed of the shuffle; zero means random"},
						&cli.BoolFlag{Name: "assume-first", Usage: "treat the first option as correct when none is marked"},
					},
				},
				{
					Action:    s.offline(s.withEngine(s.quizGrade)),
					Name:      "grade",
					Usage:     "Grade answers and award the quiz XP",
					ArgsUsage: "<lesson id>",
					Flags: []cli.Flag{
						&cli.StringSliceFlag{Name: "answer", Usage: "question-id=option-index, repeatable"},
					},
				},
			},
		},
		{
			Name:     "xp",
			Usage:    "Inspect and grow the gamification state",
			Category: "Learn",
			Subcommands: []*cli.Command{
				{
					Action: s.offline(s.withEngine(s.xpShow)),
					Name:   "show",
					Usage:  "Show XP, level, streak and badges",
				},
				{
					Action:    s.offline(s.withEngine(s.xpAward)),
					Name:      "award",
					Usage:     "Award XP",
					ArgsUsage: "<amount>",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "reason", Value: "manual"},
					},
				},
				{
					Action:    s.offline(s.withEngine(s.xpLesson)),
					Name:      "lesson",
					Usage:     "Record a completed lesson",
					ArgsUsage: "<lesson id>",
				},
				{
					Action:    s.offline(s.withEngine(s.xpVideo)),
					Name:      "video",
					Usage:     "Record a watched video",
					ArgsUsage: "<video id>",
				},
				{
					Action:    s.offline(s.withEngine(s.xpQuiz)),
					Name:      "quiz",
					Usage:     "Record a quiz score",
					ArgsUsage: "<lesson id> <score>",
				},
				{
					Action:    s.offline(s.withEngine(s.xpModule)),
					Name:      "module",
					Usage:     "Record a completed module",
					ArgsUsage: "<module id>",
				},
				{
					Action: s.offline(s.withEngine(s.xpBadges)),
					Name:   "badges",
					Usage:  "List every badge and whether it is unlocked",
				},
				{
					Action:    s.offline(s.withEngine(s.xpUnlock)),
					Name:      "unlock",
					Usage:     "Unlock a badge",
					ArgsUsage: "<badge id>",
				},
				{
					Action: s.offline(s.withEngine(s.xpReset)),
					Name:   "reset",
					Usage:  "Forget all local progress",
				},
				{
					Action:    s.online(s.withEngine(s.xpSync)),
					Name:      "sync",
					Usage:     "Push the local state to the backend",
					ArgsUsage: "[user id]",
				},
				{
					Action:    s.online(s.withEngine(s.xpPull)),
					Name:      "pull",
					Usage:     "Overlay the backend state on the local one",
					ArgsUsage: "[user id]",
				},
			},
		},
		{
			Name:     "wallet",
			Usage:    "Manage the connected wallet",
			Category: "Account",
			Subcommands: []*cli.Command{
				{
					Action:    s.offline(s.walletConnect),
					Name:      "connect",
					Usage:     "Connect a wallet address",
					ArgsUsage: "<address>",
				},
				{
					Action: s.offline(s.walletDisconnect),
					Name:   "disconnect",
					Usage:  "Forget the connected wallet",
				},
				{
					Action: s.offline(s.walletShow),
					Name:   "show",
					Usage:  "Show the connected wallet",
				},
				{
					Action:    s.online(s.walletBalance),
					Name:      "balance",
					Usage:     "Read the native and token balances",
					ArgsUsage: "[address]",
				},
			},
		},
		{
			Name:     "session",
			Usage:    "Manage the signed-in session",
			Category: "Account",
			Subcommands: []*cli.Command{
				{
					Action:    s.offline(s.sessionLogin),
					Name:      "login",
					Usage:     "Store a session token",
					ArgsUsage: "<token>",
				},
				{
					Action: s.offline(s.sessionShow),
					Name:   "show",
					Usage:  "Show the stored session",
				},
				{
					Action: s.offline(s.sessionClear),
					Name:   "clear",
					Usage:  "Sign out",
				},
				{
					Action:    s.online(s.sessionVerify),
					Name:      "verify",
					Usage:     "Ask the backend to verify a token",
					ArgsUsage: "[token]",
				},
				{
					Action:    s.online(s.sessionOAuth),
					Name:      "oauth",
					Usage:     "Print the authorization URL of a provider",
					ArgsUsage: "<provider>",
				},
			},
		},
	}

	s.app = app
}

func activityFlags(requireTitle bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Required: requireTitle},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "location"},
		&cli.StringFlag{Name: "timestamp", Usage: "RFC 3339; defaults to now"},
	}
}

func statusFlags(requireCategory bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "category", Required: requireCategory},
		&cli.StringFlag{Name: "issuer"},
		&cli.StringFlag{Name: "reference"},
	}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Value: 1},
		&cli.IntFlag{Name: "page-size", Value: 20},
	}
}

// online loads everything a backend command needs before running action.
func (s *srv) online(action cli.ActionFunc) cli.ActionFunc {
	return s.load(true, action)
}

// offline loads only the local state.
func (s *srv) offline(action cli.ActionFunc) cli.ActionFunc {
	return s.load(false, action)
}

func (s *srv) load(online bool, action cli.ActionFunc) cli.ActionFunc {
	return func(ct *cli.Context) error {
		if err := s.loadConfig(ct, online); err != nil {
			return err
		}
		s.loadLogger(ct)
		s.loadContext(ct)
		if err := s.loadStore(); err != nil {
			return err
		}
		s.loadEndpoint()
		s.loadDomains()
		defer s.close()

		return action(ct)
	}
}

func (s *srv) withEngine(action cli.ActionFunc) cli.ActionFunc {
	return func(ct *cli.Context) error {
		if err := s.loadEngine(); err != nil {
			return err
		}

		return action(ct)
	}
}

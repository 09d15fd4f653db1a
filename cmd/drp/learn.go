package main

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/decentralizedrights/portal/internal/gamification"
	"github.com/decentralizedrights/portal/internal/lesson"
	"github.com/decentralizedrights/portal/internal/quiz"
	"github.com/decentralizedrights/portal/pkg/api/learn"
	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/decentralizedrights/portal/pkg/session"
	"github.com/urfave/cli/v2"
)

type gradeOutput struct {
	Result quiz.Result        `json:"result"`
	Award  gamification.Award `json:"award"`
}

type completionOutput struct {
	Completion learn.Completion    `json:"completion"`
	Lesson     gamification.Award  `json:"lesson"`
	Quiz       *gamification.Award `json:"quiz,omitempty"`
}

func (s *srv) findLesson(ct *cli.Context) (lesson.Lesson, error) {
	id, err := arg(ct, 0, "lesson id")
	if err != nil {
		return lesson.Lesson{}, err
	}

	lessons, err := lesson.LoadDir(ct.String(flagLessons))
	if err != nil {
		return lesson.Lesson{}, err
	}

	return lesson.Find(lessons, id)
}

func shuffler(ct *cli.Context) *quiz.Shuffler {
	var src rand.Source
	if seed := ct.Int64("seed"); seed != 0 {
		src = rand.NewSource(seed)
	}

	return quiz.NewShuffler(src)
}

func (s *srv) lessonQuestions(ct *cli.Context) error {
	l, err := s.findLesson(ct)
	if err != nil {
		return err
	}

	questions := l.Questions()
	if ct.Bool("shuffle") {
		if questions, err = shuffleQuestions(shuffler(ct), questions, false); err != nil {
			return err
		}
	}

	return s.print(ct, questions)
}

func (s *srv) lessonSections(ct *cli.Context) error {
	l, err := s.findLesson(ct)
	if err != nil {
		return err
	}

	return s.print(ct, l.Sections())
}

func (s *srv) lessonRender(ct *cli.Context) error {
	l, err := s.findLesson(ct)
	if err != nil {
		return err
	}

	l.Content = lesson.ReplaceQuestionsWithPlaceholders(l.Content)
	return s.print(ct, l)
}

func (s *srv) lessonSearch(ct *cli.Context) error {
	query, err := arg(ct, 0, "query")
	if err != nil {
		return err
	}

	lessons, err := lesson.LoadDir(ct.String(flagLessons))
	if err != nil {
		return err
	}

	index, err := lesson.NewIndex()
	if err != nil {
		return err
	}
	defer index.Close()

	if err := index.Add(lessons...); err != nil {
		return err
	}

	hits, err := index.Search(query, ct.Int("offset"), ct.Int("limit"))
	if err != nil {
		return err
	}

	return s.print(ct, hits)
}

func (s *srv) lessonFetch(ct *cli.Context) error {
	id, err := arg(ct, 0, "lesson id")
	if err != nil {
		return err
	}

	l, err := s.learnEndpoint.FetchLesson(s.ctx, id)
	if err != nil {
		return err
	}

	return s.print(ct, l)
}

// lessonComplete reports the lesson to the learning backend, then awards the
// lesson XP and, when --score is given, the quiz XP. Without --score the
// backend is told 0.
func (s *srv) lessonComplete(ct *cli.Context) error {
	id, err := arg(ct, 0, "lesson id")
	if err != nil {
		return err
	}

	address, err := s.currentAddress()
	if err != nil {
		return err
	}

	score := ct.Int("score")
	completion, err := s.learnEndpoint.CompleteLesson(s.ctx, address, id, score)
	if err != nil {
		return err
	}

	out := completionOutput{Completion: completion}
	if out.Lesson, err = s.engine.CompleteLesson(s.ctx, id); err != nil {
		return err
	}

	if ct.IsSet("score") {
		award, err := s.engine.CompleteQuiz(s.ctx, id, float64(score))
		if err != nil {
			return err
		}
		out.Quiz = &award
	}

	return s.print(ct, out)
}

func (s *srv) quizShuffle(ct *cli.Context) error {
	l, err := s.findLesson(ct)
	if err != nil {
		return err
	}

	questions, err := shuffleQuestions(shuffler(ct), l.Questions(), ct.Bool("assume-first"))
	if err != nil {
		return err
	}

	return s.print(ct, questions)
}

func (s *srv) quizGrade(ct *cli.Context) error {
	l, err := s.findLesson(ct)
	if err != nil {
		return err
	}

	answers, err := parseAnswers(ct.StringSlice("answer"))
	if err != nil {
		return err
	}

	result := quiz.Score(lesson.AnswerKeys(l.Questions()), answers)
	award, err := s.engine.CompleteQuiz(s.ctx, l.ID, result.Percent)
	if err != nil {
		return err
	}

	return s.print(ct, gradeOutput{Result: result, Award: award})
}

// shuffleQuestions permutes the options of every question. With assumeFirst,
// questions without a known answer are shuffled as if their first option
// were correct.
func shuffleQuestions(s *quiz.Shuffler, questions []lesson.ParsedQuestion, assumeFirst bool) ([]lesson.ParsedQuestion, error) {
	shuffled := make([]lesson.ParsedQuestion, 0, len(questions))
	for _, q := range questions {
		if _, ok := q.Answer(); !ok && assumeFirst {
			options := make([]quiz.Option, len(q.Options))
			for i, text := range q.Options {
				options[i] = quiz.Option{Text: text}
			}

			options, correct, err := s.AssumeFirstCorrect().Options(options)
			if err != nil {
				return nil, err
			}

			texts := make([]string, len(options))
			for i, o := range options {
				texts[i] = o.Text
			}
			q.Options = texts
			q.CorrectAnswer = &correct
			shuffled = append(shuffled, q)
			continue
		}

		q, err := q.Shuffle(s)
		if err != nil {
			return nil, err
		}
		shuffled = append(shuffled, q)
	}

	return shuffled, nil
}

func parseAnswers(pairs []string) (map[string]int, error) {
	answers := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		id, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errorx.New(errorx.BadRequest, "Answer %q must be question-id=option-index", pair)
		}

		index, err := strconv.Atoi(value)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Answer %q has an invalid option index", pair)
		}

		answers[id] = index
	}

	return answers, nil
}

func (s *srv) xpShow(ct *cli.Context) error {
	return s.print(ct, s.engine.State())
}

func (s *srv) xpAward(ct *cli.Context) error {
	raw, err := arg(ct, 0, "amount")
	if err != nil {
		return err
	}

	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return errorx.New(errorx.BadRequest, "Invalid XP amount %q", raw)
	}

	award, err := s.engine.AwardXP(s.ctx, amount, ct.String("reason"))
	if err != nil {
		return err
	}

	return s.print(ct, award)
}

func (s *srv) xpLesson(ct *cli.Context) error {
	id, err := arg(ct, 0, "lesson id")
	if err != nil {
		return err
	}

	award, err := s.engine.CompleteLesson(s.ctx, id)
	if err != nil {
		return err
	}

	return s.print(ct, award)
}

func (s *srv) xpVideo(ct *cli.Context) error {
	id, err := arg(ct, 0, "video id")
	if err != nil {
		return err
	}

	award, err := s.engine.WatchVideo(s.ctx, id)
	if err != nil {
		return err
	}

	return s.print(ct, award)
}

func (s *srv) xpQuiz(ct *cli.Context) error {
	id, err := arg(ct, 0, "lesson id")
	if err != nil {
		return err
	}

	raw, err := arg(ct, 1, "score")
	if err != nil {
		return err
	}

	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errorx.New(errorx.BadRequest, "Invalid score %q", raw)
	}

	award, err := s.engine.CompleteQuiz(s.ctx, id, score)
	if err != nil {
		return err
	}

	return s.print(ct, award)
}

func (s *srv) xpModule(ct *cli.Context) error {
	id, err := arg(ct, 0, "module id")
	if err != nil {
		return err
	}

	award, err := s.engine.CompleteModule(s.ctx, id)
	if err != nil {
		return err
	}

	return s.print(ct, award)
}

func (s *srv) xpBadges(ct *cli.Context) error {
	return s.print(ct, s.engine.Badges())
}

func (s *srv) xpUnlock(ct *cli.Context) error {
	id, err := arg(ct, 0, "badge id")
	if err != nil {
		return err
	}

	unlocked, err := s.engine.UnlockBadge(s.ctx, id)
	if err != nil {
		return err
	}

	return s.print(ct, map[string]any{"badge": id, "unlocked": unlocked})
}

func (s *srv) xpReset(ct *cli.Context) error {
	if err := s.engine.Reset(s.ctx); err != nil {
		return err
	}

	return s.print(ct, s.engine.State())
}

func (s *srv) xpSync(ct *cli.Context) error {
	userID, err := optionalArg(ct, 0, s.currentAddress)
	if err != nil {
		return err
	}

	if err := s.engine.Sync(s.ctx, s.remote(), userID); err != nil {
		return err
	}

	return s.print(ct, s.engine.State())
}

func (s *srv) xpPull(ct *cli.Context) error {
	userID, err := optionalArg(ct, 0, s.currentAddress)
	if err != nil {
		return err
	}

	state, err := s.engine.Pull(s.ctx, s.remote(), userID)
	if err != nil {
		return err
	}

	return s.print(ct, state)
}

func (s *srv) remote() *gamification.Remote {
	remote := gamification.NewRemote(s.configs.API)
	if sess, err := session.Load(s.ctx, s.store); err == nil {
		remote.Token = sess.Token
	}

	return remote
}

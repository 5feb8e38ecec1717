package php

import (
	"testing"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classFrom(t *testing.T, code string) ClassInfo {
	t.Helper()
	file, err := ParseSource("test.php", []byte(code))
	require.NoError(t, err)
	require.NotEmpty(t, file.Classes)
	return file.Classes[0]
}

func TestStringListAndMap(t *testing.T) {
	class := classFrom(t, `<?php
class Post {
    protected $fillable = ['title', "body", 'user_id',];
    protected $casts = ['published_at' => 'datetime', 'meta' => 'array'];
    protected $rules = ['email' => ['required', 'email'], 'name' => 'required|max:255'];
}`)

	fillable, _ := class.Property("fillable")
	assert.Equal(t, []string{"title", "body", "user_id"}, StringList(fillable.Default))

	casts, _ := class.Property("casts")
	assert.Equal(t, map[string]string{"published_at": "datetime", "meta": "array"}, StringMap(casts.Default))

	rules, _ := class.Property("rules")
	assert.Equal(t, map[string]string{"email": "required|email", "name": "required|max:255"}, StringMap(rules.Default))
}

func TestEvaluateConfigArray(t *testing.T) {
	root, _, err := Parse([]byte(`<?php
return [
    'defaults' => ['guard' => 'web', 'passwords' => 'users'],
    'guards' => [
        'web' => ['driver' => 'session', 'provider' => 'users'],
    ],
    'timeout' => 10800,
    'enabled' => true,
    'model' => env('AUTH_MODEL', App\Models\User::class),
    'list' => ['a', 'b'],
];`))
	require.NoError(t, err)

	expr := FileReturnedExpr(root)
	require.NotNil(t, expr)

	resolver := func(fn string, args []ast.Vertex) (interface{}, bool) {
		if fn != "env" {
			return nil, false
		}
		return Evaluate(ArgExpr(args, 1), nil), true
	}

	value, ok := Evaluate(expr, resolver).(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, map[string]interface{}{"guard": "web", "passwords": "users"}, value["defaults"])
	assert.Equal(t, int64(10800), value["timeout"])
	assert.Equal(t, true, value["enabled"])
	assert.Equal(t, "App\\Models\\User", value["model"])
	assert.Equal(t, []interface{}{"a", "b"}, value["list"])
}

func TestMethodCallsAndReturnedExpr(t *testing.T) {
	class := classFrom(t, `<?php
class User {
    public function posts() {
        return $this->hasMany(Post::class, 'author_id');
    }
    public function team() {
        return $this->belongsTo(Team::class)->withDefault();
    }
    protected function casts(): array {
        return ['email_verified_at' => 'datetime'];
    }
}`)

	posts, _ := class.Method("posts")
	calls := MethodCalls(posts.Node)
	require.Len(t, calls, 1)
	assert.Equal(t, MethodCall{Object: "this", Method: "hasMany", Args: []string{"Post", "author_id"}}, calls[0])

	team, _ := class.Method("team")
	calls = MethodCalls(team.Node)
	require.Len(t, calls, 2)
	assert.Equal(t, "withDefault", calls[0].Method)
	assert.Equal(t, "belongsTo", calls[1].Method)
	assert.Equal(t, "this", calls[1].Object)

	casts, _ := class.Method("casts")
	assert.Equal(t, map[string]string{"email_verified_at": "datetime"}, StringMap(ReturnedExpr(casts.Node)))
}

func TestNameHelpers(t *testing.T) {
	assert.Equal(t, "User", Basename("\\App\\Models\\User"))
	assert.Equal(t, "User", Basename("User"))
	assert.Equal(t, "it's", unquote(`'it\'s'`))
	assert.Equal(t, "a\"b", unquote(`"a\"b"`))
}
